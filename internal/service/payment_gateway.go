package service

import (
	"context"
	"fmt"
	"mandabem_backend/internal/model"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentGateway 支付确认的外部协作方。真实网关（如 Mercado Pago）接入前使用 MockGateway
type PaymentGateway interface {
	Charge(ctx context.Context, submission *model.Submission, method string) (string, error)
}

// MockGateway 始终成功，返回形如 PIX_<unix>_<random> 的参考号
type MockGateway struct {
	Now func() time.Time
}

func NewMockGateway() *MockGateway {
	return &MockGateway{Now: time.Now}
}

func (g *MockGateway) Charge(ctx context.Context, submission *model.Submission, method string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:7]
	prefix := strings.ToUpper(method)
	if method == "" {
		prefix = "PIX"
	}
	return fmt.Sprintf("%s_%d_%s", prefix, g.Now().Unix(), random), nil
}
