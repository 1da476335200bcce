package model

// 問数で扱う指標
type Metric string

const (
	MetricSales     Metric = "sales"
	MetricQuantity  Metric = "quantity"
	MetricOrders    Metric = "orders"
	MetricCustomers Metric = "customers"
)
