package main

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"rentalhub/internal/config"
	"rentalhub/internal/database"
	"rentalhub/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("db connect: %v", err)
	}

	logrus.Info("running migrations")
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("migrate failed: %v", err)
	}

	// Cleanup old data in FK-safe order.
	logrus.Info("cleaning old data")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM products")
	db.Exec("DELETE FROM brands")
	db.Exec("DELETE FROM users")

	logrus.Info("creating users")
	admin := domain.User{
		Email:        "admin@rentalhub.local",
		PasswordHash: mustHash("admin123"),
		Role:         domain.RoleAdmin,
		Name:         "Admin",
	}
	owner := domain.User{
		Email:        "owner@rentalhub.local",
		PasswordHash: mustHash("owner123"),
		Role:         domain.RoleBrandOwner,
		Name:         "Dana Owner",
		Phone:        "+77010000001",
	}
	customer := domain.User{
		Email:        "customer@rentalhub.local",
		PasswordHash: mustHash("customer123"),
		Role:         domain.RoleCustomer,
		Name:         "Miras Customer",
		Phone:        "+77010000002",
	}
	for _, u := range []*domain.User{&admin, &owner, &customer} {
		if err := db.Create(u).Error; err != nil {
			logrus.Fatalf("seed user: %v", err)
		}
	}

	logrus.Info("creating brands and products")
	brand := domain.Brand{
		OwnerID:     owner.ID,
		Name:        "Aurora Event Spaces",
		Description: "Event venues and equipment rental",
		City:        "Almaty",
		BankAccount: "KZ000000000000000001",
		IsActive:    true,
	}
	if err := db.Create(&brand).Error; err != nil {
		logrus.Fatalf("seed brand: %v", err)
	}

	products := []domain.Product{
		{
			BrandID:     brand.ID,
			Name:        "Grand Hall",
			Description: "Main event hall, up to 200 guests",
			Price:       150000,
			PriceUnit:   domain.UnitDay,
			Amenities:   mustJSON([]string{"stage", "sound system", "parking"}),
			IsActive:    true,
		},
		{
			BrandID:     brand.ID,
			Name:        "Conference Room B",
			Description: "Meeting room for 20",
			Price:       25000,
			PriceUnit:   domain.UnitHour,
			Amenities:   mustJSON([]string{"projector", "whiteboard"}),
			IsActive:    true,
		},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			logrus.Fatalf("seed product: %v", err)
		}
	}

	logrus.Info("creating a demo booking")
	start := time.Now().AddDate(0, 0, 7).Truncate(time.Hour)
	booking := domain.Booking{
		BookingCode:   "BK" + time.Now().Format("0601") + "DEMO01",
		ProductID:     products[0].ID,
		BrandID:       brand.ID,
		UserID:        &customer.ID,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 2),
		TotalPrice:    450000,
		Status:        domain.BookingConfirmed,
		PaymentStatus: domain.PaymentPaid,
		PaymentMethod: "bank_transfer",
	}
	if err := db.Create(&booking).Error; err != nil {
		logrus.Fatalf("seed booking: %v", err)
	}

	logrus.Info("seed complete")
}

func mustHash(pw string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		logrus.Fatal(err)
	}
	return string(h)
}

func mustJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.Fatal(err)
	}
	return datatypes.JSON(data)
}
