package domain

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// 与表结构列宽一致，按字符数计
const (
	MaxIDLen          = 32
	MaxUsernameLen    = 64
	MaxNameLen        = 64
	MaxPhoneLen       = 32
	MaxAddressLen     = 512
	MaxImageLen       = 512
	MaxProductNameLen = 128
	MaxSellerNameLen  = 128
)

// MaxPrice decimal(12,2) 可表示的上界（不含）
var MaxPrice = decimal.New(1, 10)

// CheckLen 超长返回 InvalidArgument
func CheckLen(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return InvalidArgument("%s must be at most %d characters", field, max)
	}
	return nil
}

// CheckPrice 负数或超出列精度都不接受
func CheckPrice(field string, p decimal.Decimal) error {
	if p.IsNegative() {
		return InvalidArgument("%s must not be negative", field)
	}
	if p.GreaterThanOrEqual(MaxPrice) {
		return InvalidArgument("%s is too large", field)
	}
	return nil
}

func (a Address) Validate() error {
	return ShippingAddress{Name: a.Name, Phone: a.Phone, Address: a.Address}.Validate()
}

// Validate 收货地址三个字段的长度
func (a ShippingAddress) Validate() error {
	if err := CheckLen("name", a.Name, MaxNameLen); err != nil {
		return err
	}
	if err := CheckLen("phone", a.Phone, MaxPhoneLen); err != nil {
		return err
	}
	return CheckLen("address", a.Address, MaxAddressLen)
}
