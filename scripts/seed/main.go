// Package main implements a standalone seed script that populates the
// storefront database with realistic demo data: an admin account, a few
// customers, a fashion catalog with sizes and colors, and a handful of
// orders with their activity feed entries.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("POSTGRES_USER", "atelier"),
		getEnv("POSTGRES_PASSWORD", "atelier_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB", "atelier"),
	)
}

type seedProduct struct {
	name     string
	price    string
	gender   string
	featured bool
	stock    int
	sizes    []string
	colors   []string
}

var catalog = []seedProduct{
	{"Linen Shirt", "10.00", "MEN", true, 120, []string{"S", "M", "L", "XL"}, []string{"White", "Sand"}},
	{"Wool Scarf", "15.00", "WOMEN", true, 80, []string{"ONE"}, []string{"Charcoal", "Burgundy"}},
	{"Relaxed Chinos", "42.50", "MEN", false, 60, []string{"30", "32", "34", "36"}, []string{"Khaki", "Navy"}},
	{"Pleated Midi Skirt", "38.00", "WOMEN", true, 45, []string{"XS", "S", "M", "L"}, []string{"Black", "Olive"}},
	{"Oversized Hoodie", "29.99", "UNISEX", false, 200, []string{"S", "M", "L", "XL", "XXL"}, []string{"Grey", "Black", "Cream"}},
	{"Silk Blouse", "55.00", "WOMEN", false, 30, []string{"S", "M", "L"}, []string{"Ivory", "Blush"}},
	{"Denim Jacket", "64.90", "UNISEX", true, 75, []string{"S", "M", "L", "XL"}, []string{"Indigo", "Washed Blue"}},
	{"Canvas Tote", "18.00", "UNISEX", false, 150, []string{"ONE"}, []string{"Natural", "Black"}},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn())
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	adminID := seedUser(ctx, pool, "admin", "admin@atelier.dev", "admin-password", "ADMIN")
	log.Printf("admin user id=%d", adminID)

	customers := make([]int64, 0, 3)
	for i := 1; i <= 3; i++ {
		id := seedUser(ctx, pool,
			fmt.Sprintf("customer%d", i),
			fmt.Sprintf("customer%d@example.com", i),
			"customer-password", "USER")
		customers = append(customers, id)
	}
	log.Printf("seeded %d customers", len(customers))

	productIDs := make([]int64, 0, len(catalog))
	for _, p := range catalog {
		var id int64
		err := pool.QueryRow(ctx, `
			INSERT INTO products (name, description, price, gender, featured, stock_quantity, sizes, colors)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			p.name, "Seeded demo product.", p.price, p.gender, p.featured, p.stock, p.sizes, p.colors,
		).Scan(&id)
		if err != nil {
			log.Fatalf("insert product %q: %v", p.name, err)
		}
		productIDs = append(productIDs, id)
	}
	log.Printf("seeded %d products", len(productIDs))

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i, customerID := range customers {
		orderNumber := fmt.Sprintf("ORD-SEED-%04d", i+1)
		product := catalog[rng.Intn(len(catalog))]
		qty := 1 + rng.Intn(3)

		var orderID int64
		err := pool.QueryRow(ctx, `
			INSERT INTO orders (order_number, customer_id, status, subtotal, discount, total, shipping_address)
			VALUES ($1, $2, 'PENDING', $3, 0, $3, '12 Demo Street')
			ON CONFLICT (order_number) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			orderNumber, customerID, product.price,
		).Scan(&orderID)
		if err != nil {
			log.Fatalf("insert order %s: %v", orderNumber, err)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, unit_price, size, color, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			orderID, productIDs[rng.Intn(len(productIDs))], product.name, product.price,
			product.sizes[0], product.colors[0], qty,
		)
		if err != nil {
			log.Fatalf("insert order item for %s: %v", orderNumber, err)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO activities (type, description, customer_id)
			VALUES ('order_placed', $1, $2)`,
			fmt.Sprintf("Order %s was placed", orderNumber), customerID,
		)
		if err != nil {
			log.Fatalf("insert activity for %s: %v", orderNumber, err)
		}
	}
	log.Printf("seeded %d orders with activity entries", len(customers))

	log.Println("seed complete")
}

// seedUser inserts a user if the email is free and returns its id either way.
func seedUser(ctx context.Context, pool *pgxpool.Pool, username, email, password, userType string) int64 {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password for %s: %v", email, err)
	}

	var id int64
	err = pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, user_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		username, email, string(hash), userType,
	).Scan(&id)
	if err != nil {
		log.Fatalf("insert user %s: %v", email, err)
	}
	return id
}
