package util

import "github.com/VannaSem/SevaSign/internal/constant"

func CalculateTotalPage(totalItems int64, pageSize uint) int {
	if pageSize <= 0 {
		pageSize = constant.DefaultPageSize
	}
	if totalItems == 0 {
		return 1
	}
	totalPage := int(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) != 0 {
		totalPage++
	}
	return totalPage
}

// NormalizePagination clamps page/pageSize query values into usable bounds.
func NormalizePagination(page, pageSize uint) (uint, uint) {
	if page < 1 {
		page = constant.DefaultPage
	}
	if pageSize < 1 {
		pageSize = constant.DefaultPageSize
	}
	if pageSize > constant.MaxPageSize {
		pageSize = constant.MaxPageSize
	}
	return page, pageSize
}
