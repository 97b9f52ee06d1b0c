// Package testutil 测试用的内存数据库与数据构造函数
package testutil

import (
	"fmt"
	"mandabem_backend/internal/model"
	"mandabem_backend/pkg/database"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB 每个测试独立的内存 sqlite，结构与生产迁移一致（含唯一索引）。
// 只保留一个连接，事务内的查询必须走 tx
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// ValidCPFs 校验位正确的测试 CPF
var ValidCPFs = []string{
	"11144477735",
	"52998224725",
	"39053344705",
	"15350946056",
}

func CreateParticipant(t *testing.T, db *gorm.DB, name, cpf string) *model.User {
	t.Helper()

	user := &model.User{
		Name:  name,
		Email: fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		CPF:   &cpf,
		Role:  model.Participant,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateStaff(t *testing.T, db *gorm.DB, name string, role model.UserRole) *model.User {
	t.Helper()

	user := &model.User{
		Name:  name,
		Email: fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Role:  role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateLocation(t *testing.T, db *gorm.DB, city string) *model.Location {
	t.Helper()

	location := &model.Location{
		Name:    "Arena " + city,
		Address: "Rua das Flores, 100",
		City:    city,
		Active:  true,
	}
	require.NoError(t, db.Create(location).Error)
	return location
}

// CreateChallenge 时间窗覆盖当前时刻
func CreateChallenge(t *testing.T, db *gorm.DB, status model.ChallengeStatus) *model.Challenge {
	t.Helper()

	location := CreateLocation(t, db, "Recife")
	now := time.Now()
	challenge := &model.Challenge{
		LocationID:  &location.ID,
		Title:       "Desafio de verão",
		Description: "Crie a melhor campanha para o verão",
		Theme:       "verão",
		Prize:       decimal.NewFromInt(500),
		StartsAt:    now.Add(-time.Hour),
		EndsAt:      now.Add(24 * time.Hour),
		Status:      status,
	}
	require.NoError(t, challenge.SetRules([]string{"Uma foto por envio"}))
	require.NoError(t, db.Create(challenge).Error)
	return challenge
}
