package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
	"github.com/lib/pq"

	"github.com/shopkart-labs/shopkart-backend/internal/catalog"
	"github.com/shopkart-labs/shopkart-backend/internal/coupons"
	"github.com/shopkart-labs/shopkart-backend/pkg/config"
	"github.com/shopkart-labs/shopkart-backend/pkg/db"
	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
	"github.com/shopkart-labs/shopkart-backend/pkg/migrate"
)

type seedProduct struct {
	category    string
	name        string
	description string
	pricePaise  int64
	tags        []string
	sizes       []string
	colors      []string
}

var seedCategories = []string{"T-Shirts", "Hoodies", "Jeans", "Sneakers", "Accessories"}

var seedSizes = map[string]int64{
	"XS":  0,
	"S":   0,
	"M":   0,
	"L":   2000,
	"XL":  4000,
	"XXL": 6000,
}

var seedColors = map[string]int64{
	"Black": 0,
	"White": 0,
	"Blue":  1000,
	"Red":   1000,
	"Green": 1500,
}

var seedProducts = []seedProduct{
	{
		category:    "T-Shirts",
		name:        "Classic Cotton Tee",
		description: "Everyday crew neck in combed cotton.",
		pricePaise:  49900,
		tags:        []string{"cotton", "casual", "bestseller"},
		sizes:       []string{"XS", "S", "M", "L", "XL", "XXL"},
		colors:      []string{"Black", "White", "Blue"},
	},
	{
		category:    "T-Shirts",
		name:        "Graphic Print Tee",
		description: "Screen-printed artwork on a relaxed fit.",
		pricePaise:  69900,
		tags:        []string{"cotton", "graphic"},
		sizes:       []string{"S", "M", "L", "XL"},
		colors:      []string{"Black", "White", "Red"},
	},
	{
		category:    "Hoodies",
		name:        "Fleece Pullover Hoodie",
		description: "Midweight fleece with a double-lined hood.",
		pricePaise:  149900,
		tags:        []string{"fleece", "winter", "bestseller"},
		sizes:       []string{"S", "M", "L", "XL", "XXL"},
		colors:      []string{"Black", "Green"},
	},
	{
		category:    "Jeans",
		name:        "Slim Fit Denim",
		description: "Stretch denim with a tapered leg.",
		pricePaise:  199900,
		tags:        []string{"denim", "slim"},
		sizes:       []string{"S", "M", "L", "XL"},
		colors:      []string{"Blue", "Black"},
	},
	{
		category:    "Sneakers",
		name:        "Court Low Sneaker",
		description: "Leather upper on a cupsole.",
		pricePaise:  299900,
		tags:        []string{"leather", "court"},
		sizes:       []string{"M", "L", "XL"},
		colors:      []string{"White", "Black"},
	},
	{
		category:    "Accessories",
		name:        "Canvas Tote Bag",
		description: "Heavy canvas with an interior pocket.",
		pricePaise:  39900,
		tags:        []string{"canvas", "everyday"},
	},
}

var seedCoupons = []models.Coupon{
	{Code: "WELCOME10", DiscountPaise: 10000, MinimumAmountPaise: 50000},
	{Code: "SAVE20", DiscountPaise: 20000, MinimumAmountPaise: 100000},
	{Code: "BIG50", DiscountPaise: 50000, MinimumAmountPaise: 250000},
	{Code: "FLAT100", DiscountPaise: 100000, MinimumAmountPaise: 500000},
	{Code: "NEWUSER", DiscountPaise: 15000, MinimumAmountPaise: 0},
	{Code: "EXPIRED", DiscountPaise: 20000, MinimumAmountPaise: 0, IsExpired: true},
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	fatalOn(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	fatalOn(ctx, logg, "database", err)
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fatalOn(ctx, logg, "migrations", err)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	couponsRepo := coupons.NewRepository(dbClient.DB())

	categories := make(map[string]*models.Category, len(seedCategories))
	for _, name := range seedCategories {
		category, err := catalogRepo.FindOrCreateCategory(ctx, name, slug.Make(name))
		fatalOn(ctx, logg, "seed category "+name, err)
		categories[name] = category
	}

	sizes := make(map[string]*models.SizeVariant, len(seedSizes))
	for label, surcharge := range seedSizes {
		variant, err := catalogRepo.FindOrCreateSizeVariant(ctx, label, surcharge)
		fatalOn(ctx, logg, "seed size "+label, err)
		sizes[label] = variant
	}

	colors := make(map[string]*models.ColorVariant, len(seedColors))
	for label, surcharge := range seedColors {
		variant, err := catalogRepo.FindOrCreateColorVariant(ctx, label, surcharge)
		fatalOn(ctx, logg, "seed color "+label, err)
		colors[label] = variant
	}

	created := 0
	for _, sp := range seedProducts {
		productSlug := slug.Make(sp.name)
		exists, err := catalogRepo.SlugExists(ctx, productSlug)
		fatalOn(ctx, logg, "seed product "+sp.name, err)
		if exists {
			continue
		}

		description := sp.description
		product := &models.Product{
			CategoryID:  categories[sp.category].ID,
			Name:        sp.name,
			Slug:        productSlug,
			Description: &description,
			PricePaise:  sp.pricePaise,
			Tags:        pq.StringArray(sp.tags),
			IsActive:    true,
		}
		for _, label := range sp.sizes {
			product.SizeVariants = append(product.SizeVariants, *sizes[label])
		}
		for _, label := range sp.colors {
			product.ColorVariants = append(product.ColorVariants, *colors[label])
		}

		_, err = catalogRepo.CreateProduct(ctx, product)
		fatalOn(ctx, logg, "seed product "+sp.name, err)
		created++
	}

	for _, coupon := range seedCoupons {
		_, err := couponsRepo.FindOrCreateByCode(ctx, coupon)
		fatalOn(ctx, logg, "seed coupon "+coupon.Code, err)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"categories":   len(categories),
		"sizes":        len(sizes),
		"colors":       len(colors),
		"new_products": created,
		"coupons":      len(seedCoupons),
	})
	logg.Info(ctx, "seed complete")
}

func fatalOn(ctx context.Context, logg *logger.Logger, step string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("seed failed: %s", step), err)
	os.Exit(1)
}
