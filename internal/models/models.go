package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"      json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false"    json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"         json:"id"`
	Token     string `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uint   `gorm:"index;not null"     json:"user_id"`
	JTI       string `gorm:"uniqueIndex;not null" json:"jti"`
	ExpiresAt int64  `gorm:"not null"           json:"expires_at"`
	Revoked   bool   `gorm:"not null;default:false" json:"revoked"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name        string          `gorm:"uniqueIndex;not null"        json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Cart struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"       json:"id"`
	UserID       uint            `gorm:"index;not null"                 json:"user_id"`
	Status       CartStatus      `gorm:"type:varchar(16);index;not null" json:"status"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"total_price"`
	CheckedOutAt *time.Time      `json:"checked_out_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Items        []CartItem      `gorm:"foreignKey:CartID"              json:"items"`
}

type CartItem struct {
	ID        uint     `gorm:"primaryKey;autoIncrement"                 json:"id"`
	CartID    uint     `gorm:"uniqueIndex:idx_cart_product;not null"    json:"cart_id"`
	ProductID uint     `gorm:"uniqueIndex:idx_cart_product;not null"    json:"product_id"`
	Quantity  int      `gorm:"not null;check:quantity > 0"              json:"quantity"`
	Product   *Product `gorm:"foreignKey:ProductID"                     json:"product,omitempty"`
}

type Address struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	Country   string    `gorm:"not null"                 json:"country"`
	City      string    `gorm:"not null"                 json:"city"`
	Street    string    `gorm:"not null"                 json:"street"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
