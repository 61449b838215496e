// Command seed populates a fresh database with the eight catalog categories
// and a handful of components (plus specs) per category, so the service is
// runnable end to end without a hand-authored SQL dump.
package main

import (
	"database/sql"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"github.com/partforge/configurator/internal/config"
	"github.com/partforge/configurator/internal/database"
	"github.com/partforge/configurator/internal/models"
)

type seedComponent struct {
	name     string
	brand    string
	price    string
	stock    int
	specTbl  string
	attrs    map[string]interface{}
}

var categories = []struct {
	slug string
	name string
}{
	{models.CategoryCPU, "CPU"},
	{models.CategoryCPUCooler, "CPU Cooler"},
	{models.CategoryMotherboard, "Motherboard"},
	{models.CategoryGPU, "Graphics Card"},
	{models.CategoryMemory, "Memory"},
	{models.CategoryStorage, "Storage"},
	{models.CategoryPSU, "Power Supply"},
	{models.CategoryCase, "Case"},
}

var seedData = map[string][]seedComponent{
	models.CategoryCPU: {
		{"Ryzen 5 7600", "AMD", "229.00", 40, "cpu_specs", map[string]interface{}{"socket": "AM5", "cores": 6, "tdp": 65}},
		{"Core i5-14600K", "Intel", "319.00", 35, "cpu_specs", map[string]interface{}{"socket": "LGA1700", "cores": 14, "tdp": 125}},
		{"Ryzen 9 7950X", "AMD", "599.00", 15, "cpu_specs", map[string]interface{}{"socket": "AM5", "cores": 16, "tdp": 170}},
	},
	models.CategoryCPUCooler: {
		{"Hyper 212 Black", "Cooler Master", "39.99", 60, "cpu_cooler_specs", map[string]interface{}{"compatible_sockets": []string{"AM5", "LGA1700"}, "height": 159}},
		{"NH-D15", "Noctua", "109.95", 25, "cpu_cooler_specs", map[string]interface{}{"compatible_sockets": []string{"AM5", "LGA1700"}, "height": 165}},
	},
	models.CategoryMotherboard: {
		{"B650 Gaming Plus", "MSI", "159.99", 30, "motherboard_specs", map[string]interface{}{"socket": "AM5", "memory_type": "DDR5", "max_memory_gb": 128, "memory_slots": 4, "form_factor": "ATX"}},
		{"Z790 AORUS Elite", "Gigabyte", "229.99", 20, "motherboard_specs", map[string]interface{}{"socket": "LGA1700", "memory_type": "DDR5", "max_memory_gb": 192, "memory_slots": 4, "form_factor": "ATX"}},
	},
	models.CategoryGPU: {
		{"GeForce RTX 4070", "NVIDIA", "549.00", 25, "gpu_specs", map[string]interface{}{"length": 267, "tdp": 200, "recommended_psu_watts": 650}},
		{"Radeon RX 7800 XT", "AMD", "499.00", 20, "gpu_specs", map[string]interface{}{"length": 280, "tdp": 263, "recommended_psu_watts": 700}},
	},
	models.CategoryMemory: {
		{"Vengeance 32GB DDR5-6000", "Corsair", "99.99", 50, "memory_specs", map[string]interface{}{"type": "DDR5", "capacity_gb": 32, "speed_mhz": 6000}},
		{"Fury Beast 16GB DDR5-5600", "Kingston", "54.99", 60, "memory_specs", map[string]interface{}{"type": "DDR5", "capacity_gb": 16, "speed_mhz": 5600}},
	},
	models.CategoryStorage: {
		{"970 EVO Plus 1TB", "Samsung", "69.99", 80, "storage_specs", map[string]interface{}{"interface": "NVMe", "capacity_gb": 1000}},
		{"Barracuda 2TB", "Seagate", "54.99", 50, "storage_specs", map[string]interface{}{"interface": "SATA", "capacity_gb": 2000}},
	},
	models.CategoryPSU: {
		{"RM750x", "Corsair", "119.99", 30, "psu_specs", map[string]interface{}{"wattage": 750, "efficiency_rating": "80+ Gold"}},
		{"MWE Gold 650", "Cooler Master", "79.99", 35, "psu_specs", map[string]interface{}{"wattage": 650, "efficiency_rating": "80+ Gold"}},
	},
	models.CategoryCase: {
		{"4000D Airflow", "Corsair", "104.99", 25, "case_specs", map[string]interface{}{"form_factor_support": []string{"ATX", "Micro-ATX", "Mini-ITX"}, "max_gpu_length": 360}},
		{"O11 Dynamic", "Lian Li", "149.99", 15, "case_specs", map[string]interface{}{"form_factor_support": []string{"ATX", "Micro-ATX", "Mini-ITX"}, "max_gpu_length": 420}},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	for _, cat := range categories {
		categoryID, err := upsertCategory(db, cat.slug, cat.name)
		if err != nil {
			log.Fatalf("failed to seed category %s: %v", cat.slug, err)
		}

		for _, comp := range seedData[cat.slug] {
			if err := seedComponentRow(db, categoryID, comp); err != nil {
				log.Fatalf("failed to seed component %s: %v", comp.name, err)
			}
		}

		log.Printf("seeded category %s with %d components", cat.slug, len(seedData[cat.slug]))
	}

	log.Println("seed complete")
}

func upsertCategory(db *sql.DB, slug, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO categories (slug, name)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, slug, name).Scan(&id)
	return id, err
}

func seedComponentRow(db *sql.DB, categoryID uuid.UUID, comp seedComponent) error {
	var existing uuid.UUID
	err := db.QueryRow(`SELECT id FROM components WHERE category_id = $1 AND name = $2`, categoryID, comp.name).Scan(&existing)
	if err == nil {
		return nil // already seeded
	}
	if err != sql.ErrNoRows {
		return err
	}

	var componentID uuid.UUID
	err = db.QueryRow(`
		INSERT INTO components (category_id, name, brand, price, stock, status, low_stock_threshold)
		VALUES ($1, $2, $3, $4, $5, 'active', 5)
		RETURNING id`, categoryID, comp.name, comp.brand, comp.price, comp.stock).Scan(&componentID)
	if err != nil {
		return err
	}

	attrs, err := json.Marshal(comp.attrs)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + comp.specTbl + ` (component_id, attrs) VALUES ($1, $2)`
	_, err = db.Exec(query, componentID, attrs)
	return err
}
