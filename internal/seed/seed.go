// Package seed provisions the storefront catalog on first boot so a fresh
// deployment has something to sell.
package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/nightmarket/aestore/internal/catalog/domain"
	coupondomain "github.com/nightmarket/aestore/internal/coupon/domain"
	"gorm.io/gorm"
)

var defaultPackages = []struct {
	Name   string
	Price  int64
	Amount int64
}{
	{Name: "500 AECOIN", Price: 2500, Amount: 500},
	{Name: "1000 AECOIN", Price: 4900, Amount: 1000},
	{Name: "3000 AECOIN", Price: 13900, Amount: 3000},
	{Name: "5000 AECOIN", Price: 21900, Amount: 5000},
	{Name: "10000 AECOIN", Price: 39900, Amount: 10000},
}

// EnsurePackages inserts the default denominations when the catalog is
// empty. Existing catalogs are left alone.
func EnsurePackages(conn *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := conn.Raw(`SELECT COUNT(*) FROM packages`).Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, p := range defaultPackages {
		pkg := catalogdomain.Package{
			ID:           node.Generate(),
			Name:         p.Name,
			Price:        p.Price,
			AecoinAmount: p.Amount,
			IsActive:     true,
			CreatedAt:    now,
		}
		err := conn.Exec(
			`INSERT INTO packages (id, name, description, price, aecoin_amount, image_url, is_active, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			pkg.ID, pkg.Name, pkg.Description, pkg.Price, pkg.AecoinAmount,
			pkg.ImageURL, pkg.IsActive, pkg.CreatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// EnsureLaunchCoupons inserts the launch promotion if no coupons exist.
func EnsureLaunchCoupons(conn *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := conn.Raw(`SELECT COUNT(*) FROM coupons`).Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	limit := int64(1000)
	return conn.Exec(
		`INSERT INTO coupons (id, code, type, value, min_purchase, usage_limit, used_count, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, TRUE, ?)`,
		node.Generate(), "LAUNCH10", coupondomain.DiscountPercentage, 10, 0, limit, time.Now().UTC(),
	).Error
}
