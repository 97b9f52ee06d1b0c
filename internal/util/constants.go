package util

// 字段长度限制
const (
	MaxTextLength  = 5000
	MaxNotesLength = 1000
	MaxRules       = 20
)

// 模拟支付支持的方式
const (
	PaymentPix        = "pix"
	PaymentCreditCard = "credit_card"
	PaymentDebitCard  = "debit_card"
)

func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentPix, PaymentCreditCard, PaymentDebitCard:
		return true
	}
	return false
}
