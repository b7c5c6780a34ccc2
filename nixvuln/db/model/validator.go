package model

const (
	ValidatorTableName = "validator"
)

// ValidatorModel holds the cache validator (ETag) last seen for a feed URL.
type ValidatorModel struct {
	URL  string `gorm:"column:url;primary_key"`
	ETag string `gorm:"column:etag"`
}

func (ValidatorModel) TableName() string {
	return ValidatorTableName
}
