package model

const (
	ProductIndexTableName = "product_index"
)

// ProductIndexModel maps a product name to an advisory naming it.
type ProductIndexModel struct {
	Product string `gorm:"column:product;primary_key"`
	CVEID   string `gorm:"column:cve_id;primary_key"`
}

func (ProductIndexModel) TableName() string {
	return ProductIndexTableName
}
