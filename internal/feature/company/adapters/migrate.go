package adapters

import "gorm.io/gorm"

// AutoMigrate creates or updates the tables used by the company feature.
// users is migrated first because companies references it.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{}, &CompanyModel{})
}
