package repository

import (
	"context"
	"mandabem_backend/internal/model"

	"gorm.io/gorm"
)

type JudgeRepository struct {
	DB *gorm.DB
}

func NewJudgeRepository(db *gorm.DB) *JudgeRepository {
	return &JudgeRepository{DB: db}
}

func (r *JudgeRepository) WithTx(tx *gorm.DB) *JudgeRepository {
	return &JudgeRepository{DB: tx}
}

func (r *JudgeRepository) FindByUserID(ctx context.Context, userID string) (*model.Judge, error) {
	var j model.Judge
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&j).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

// GetOrCreate 首次评审时自动创建评委记录。user_id 上的唯一索引保证并发创建只会成功一次，
// 失败的一方重新读取已存在的记录。插入包在嵌套事务里，在外层事务中执行时走 savepoint，
// 冲突回滚后外层事务仍可继续使用
func (r *JudgeRepository) GetOrCreate(ctx context.Context, userID string) (*model.Judge, bool, error) {
	j, err := r.FindByUserID(ctx, userID)
	if err == nil {
		return j, false, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}

	j = &model.Judge{UserID: userID, Active: true}
	createErr := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(j).Error
	})
	if createErr == nil {
		return j, true, nil
	}
	if !IsDuplicate(createErr) {
		return nil, false, createErr
	}

	j, err = r.FindByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return j, false, nil
}
