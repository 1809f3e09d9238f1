package table

import "github.com/JyotinderSingh/dropexec/tx"

const fileExtension = ".tbl"

// FileName returns the name of the file that stores tableName.
func FileName(tableName string) string {
	return tableName + fileExtension
}

// Size returns the number of blocks in tableName.
func Size(transaction *tx.Transaction, tableName string) (int, error) {
	return transaction.Size(FileName(tableName))
}

// Drop deletes the file of tableName. All of its scans must be closed first.
func Drop(transaction *tx.Transaction, tableName string) error {
	return transaction.DropFile(FileName(tableName))
}
