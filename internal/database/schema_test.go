package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"retail-desk/internal/config"

	"github.com/stretchr/testify/assert"
)

const migrationsDir = "../../migrations"

func readMigration(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(migrationsDir, name))
	if err != nil {
		t.Fatalf("Failed to read migration %s: %v", name, err)
	}
	return string(content)
}

func TestMigrationFilesExist(t *testing.T) {
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	expectedMigrations := []string{
		"00001_create_clients_table.sql",
		"00002_create_categories_table.sql",
		"00003_create_products_table.sql",
		"00004_create_sales_table.sql",
		"00005_create_sale_items_table.sql",
		"00006_create_updated_at_trigger.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		sqlFileCount++

		content := readMigration(t, file.Name())
		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(content, directive) {
				t.Errorf("Migration file %s missing '%s' directive", file.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"clients":    "00001_create_clients_table.sql",
		"categories": "00002_create_categories_table.sql",
		"products":   "00003_create_products_table.sql",
		"sales":      "00004_create_sales_table.sql",
		"sale_items": "00005_create_sale_items_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		content := readMigration(t, migrationFile)

		if !strings.Contains(content, "CREATE TABLE IF NOT EXISTS "+tableName) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}
		if !strings.Contains(content, "DROP TABLE IF EXISTS "+tableName) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestProductsTableHasStockConstraint(t *testing.T) {
	content := readMigration(t, "00003_create_products_table.sql")

	for _, column := range []string{"sku VARCHAR", "price DECIMAL", "stock INTEGER", "min_stock INTEGER", "avg_monthly_sales DECIMAL"} {
		assert.Contains(t, content, column)
	}
	assert.Contains(t, content, "CHECK (stock >= 0)")
	assert.Contains(t, content, "FOREIGN KEY (category_id)")
}

func TestSalesTableHasEnumConstraints(t *testing.T) {
	content := readMigration(t, "00004_create_sales_table.sql")

	for _, value := range []string{"pending", "completed", "cancelled", "cash", "card", "transfer"} {
		assert.Contains(t, content, "'"+value+"'")
	}
	assert.Contains(t, content, "FOREIGN KEY (client_id)")
}

func TestSaleItemsKeepLineOrder(t *testing.T) {
	content := readMigration(t, "00005_create_sale_items_table.sql")

	assert.Contains(t, content, "PRIMARY KEY (sale_id, position)")
	assert.Contains(t, content, "ON DELETE CASCADE")
	assert.Contains(t, content, "CHECK (quantity >= 1)")
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "shop",
		Password: "p@ss",
		Database: "retail",
		Schema:   "public",
	})

	assert.True(t, strings.HasPrefix(dsn, "postgres://shop:p%40ss@db:5432/retail?"))
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "search_path=public")
}
