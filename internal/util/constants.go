package util

const (
	TimeFormat    = "2006-01-02 15:04:05"
	CompactFormat = "20060102"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// 题目标签最大长度
const MaxLabelLength = 400
