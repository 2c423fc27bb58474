package model

type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivProductView             = "product:view"
	PrivProductManage           = "product:manage"
	PrivCategoryManage          = "category:manage"
	PrivSupplierManage          = "supplier:manage"
	PrivTransactionView         = "transaction:view"
	PrivTransactionPurchase     = "transaction:purchase"
	PrivTransactionSell         = "transaction:sell"
	PrivTransactionReturn       = "transaction:return"
	PrivTransactionUpdateStatus = "transaction:update_status"
	PrivDashboardView           = "dashboard:view"
	PrivUserManage              = "user:manage"
)

var DefaultPrivileges = []Privilege{
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductManage, Name: "Manage Product"},
	{Code: PrivCategoryManage, Name: "Manage Category"},
	{Code: PrivSupplierManage, Name: "Manage Supplier"},
	{Code: PrivTransactionView, Name: "View Transaction"},
	{Code: PrivTransactionPurchase, Name: "Record Purchase"},
	{Code: PrivTransactionSell, Name: "Record Sale"},
	{Code: PrivTransactionReturn, Name: "Record Return To Supplier"},
	{Code: PrivTransactionUpdateStatus, Name: "Update Transaction Status"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
	{Code: PrivUserManage, Name: "Manage User"},
}
