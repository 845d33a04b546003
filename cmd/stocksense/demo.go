package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stocksense/backend-go/pkg/logger"
)

type demoProduct struct {
	code     string
	name     string
	category string
	stock    int
	expiry   *time.Time
	base     int
	trend    float64
}

// demoFixtures renders a sales and a stock CSV for the given products and
// number of days ending on end.
func demoFixtures(faker *gofakeit.Faker, products, days int, end time.Time) ([]byte, []byte, error) {
	items := make([]demoProduct, products)
	seen := make(map[string]bool, products)
	for i := range items {
		code := faker.Numerify("SKU-#####")
		for seen[code] {
			code = faker.Numerify("SKU-#####")
		}
		seen[code] = true

		p := demoProduct{
			code:     code,
			name:     faker.ProductName(),
			category: faker.ProductCategory(),
			base:     faker.Number(1, 20),
			trend:    float64(faker.Number(-10, 20)) / 10,
		}
		// Spread stock across a wide range so every status shows up.
		switch faker.Number(0, 9) {
		case 0:
			p.stock = faker.Number(0, 5)
		case 9:
			p.stock = faker.Number(300, 1200)
		default:
			p.stock = faker.Number(10, 150)
		}
		if faker.Number(0, 4) == 0 {
			expiry := end.AddDate(0, 0, faker.Number(-5, 90))
			p.expiry = &expiry
		}
		items[i] = p
	}

	var sales bytes.Buffer
	sw := csv.NewWriter(&sales)
	if err := sw.Write([]string{"data", "produto", "quantidade_vendida"}); err != nil {
		return nil, nil, err
	}
	start := end.AddDate(0, 0, -(days - 1))
	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d).Format("2006-01-02")
		for _, p := range items {
			if faker.Number(0, 3) == 0 {
				continue
			}
			qty := float64(p.base) + p.trend*float64(d) + float64(faker.Number(-2, 2))
			if qty < 0 {
				qty = 0
			}
			if err := sw.Write([]string{day, p.code, strconv.Itoa(int(qty))}); err != nil {
				return nil, nil, err
			}
		}
	}
	sw.Flush()
	if err := sw.Error(); err != nil {
		return nil, nil, err
	}

	var stock bytes.Buffer
	stw := csv.NewWriter(&stock)
	stw.Comma = ';'
	if err := stw.Write([]string{"produto", "nome", "estoque", "validade", "categoria"}); err != nil {
		return nil, nil, err
	}
	for _, p := range items {
		expiry := ""
		if p.expiry != nil {
			expiry = p.expiry.Format("02/01/2006")
		}
		if err := stw.Write([]string{p.code, p.name, strconv.Itoa(p.stock), expiry, p.category}); err != nil {
			return nil, nil, err
		}
	}
	stw.Flush()
	if err := stw.Error(); err != nil {
		return nil, nil, err
	}

	return sales.Bytes(), stock.Bytes(), nil
}

func runSeedDemo(c *cli.Context) error {
	products, days := c.Int("products"), c.Int("days")
	if products < 1 || days < 1 {
		return fmt.Errorf("--products and --days must be positive")
	}

	client, err := newStorage(c)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	faker := gofakeit.New(c.Int64("seed"))
	end := time.Now().UTC().Truncate(24 * time.Hour)
	sales, stock, err := demoFixtures(faker, products, days, end)
	if err != nil {
		return fmt.Errorf("failed to render fixtures: %w", err)
	}

	if err := client.PutObject(c.Context, c.String("sales-key"), sales); err != nil {
		return fmt.Errorf("failed to upload sales fixture: %w", err)
	}
	if err := client.PutObject(c.Context, c.String("stock-key"), stock); err != nil {
		return fmt.Errorf("failed to upload stock fixture: %w", err)
	}

	logger.Log.Info().
		Str("sales_key", c.String("sales-key")).
		Str("stock_key", c.String("stock-key")).
		Int("products", products).
		Int("days", days).
		Msg("demo fixtures uploaded")
	return nil
}
