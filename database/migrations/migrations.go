// Package migrations holds the schema history. Importing it registers
// every migration with pkg/migration.
package migrations

import (
	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/pkg/migration"
	"github.com/shashiranjanraj/tiffin/pkg/queue"
	"gorm.io/gorm"
)

func create(name string, tables ...any) migration.Migration {
	return migration.Migration{
		Name: name,
		Up:   func(tx *gorm.DB) error { return tx.AutoMigrate(tables...) },
		Down: func(tx *gorm.DB) error {
			// Children first.
			for i := len(tables) - 1; i >= 0; i-- {
				if err := tx.Migrator().DropTable(tables[i]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// OneDefaultAddressIndex allows one default address per user. MySQL has no
// partial indexes; there the address insert's row lock covers it.
const OneDefaultAddressIndex = "idx_customer_addresses_one_default"

func oneDefaultAddress() migration.Migration {
	return migration.Migration{
		Name: "2026_02_02_000001_add_one_default_address_index",
		Up: func(tx *gorm.DB) error {
			where := "is_default"
			switch tx.Dialector.Name() {
			case "mysql":
				return nil
			case "sqlserver":
				where = "is_default = 1"
			}
			return tx.Exec("CREATE UNIQUE INDEX " + OneDefaultAddressIndex +
				" ON customer_addresses (user_id) WHERE " + where).Error
		},
		Down: func(tx *gorm.DB) error {
			if tx.Dialector.Name() == "mysql" {
				return nil
			}
			return tx.Migrator().DropIndex(&models.CustomerAddress{}, OneDefaultAddressIndex)
		},
	}
}

// All is the ordered schema history.
func All() []migration.Migration {
	return []migration.Migration{
		create("2026_01_10_000001_create_food_makers_and_menu_items", &models.FoodMaker{}, &models.MenuItem{}),
		create("2026_01_10_000002_create_customer_addresses", &models.CustomerAddress{}),
		create("2026_01_10_000003_create_orders", &models.Order{}, &models.OrderItem{}),
		create("2026_01_10_000004_create_order_idempotency_keys", &models.OrderIdempotencyKey{}),
		create("2026_01_12_000001_create_user_profiles", &models.UserProfile{}),
		create("2026_01_12_000002_create_food_maker_verifications", &models.FoodMakerVerification{}),
		create("2026_01_12_000003_create_admin_notifications", &models.AdminNotification{}),
		create("2026_01_15_000001_create_failed_jobs", &queue.FailedJobRecord{}),
		oneDefaultAddress(),
	}
}

func init() {
	for _, m := range All() {
		migration.Register(m)
	}
}
