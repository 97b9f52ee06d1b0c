package model

type UserRole string

const (
	Participant UserRole = "participant"
	JudgeRole   UserRole = "judge"
	Admin       UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case Participant, JudgeRole, Admin:
		return true
	}
	return false
}

// swagger:model User
// 参赛者以 CPF 去重，工作人员（评委/管理员）没有 CPF，用密码登录
type User struct {
	UUIDBase
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	CPF      *string  `gorm:"size:11;uniqueIndex" json:"cpf,omitempty"`
	Password string   `gorm:"size:100" json:"-"`
	Role     UserRole `gorm:"size:20;default:'participant'" json:"role"`
}

func (User) TableName() string {
	return "users"
}
