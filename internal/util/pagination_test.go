package util

import "testing"

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		name         string
		page         uint
		pageSize     uint
		wantPage     uint
		wantPageSize uint
	}{
		{name: "zero values fall back to defaults", page: 0, pageSize: 0, wantPage: 1, wantPageSize: 10},
		{name: "valid values pass through", page: 3, pageSize: 25, wantPage: 3, wantPageSize: 25},
		{name: "oversized page size clamps to max", page: 1, pageSize: 5000, wantPage: 1, wantPageSize: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := NormalizePagination(tt.page, tt.pageSize)
			if page != tt.wantPage || pageSize != tt.wantPageSize {
				t.Errorf("NormalizePagination(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.pageSize, page, pageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name       string
		totalItems int64
		pageSize   uint
		want       int
	}{
		{name: "empty result still has one page", totalItems: 0, pageSize: 10, want: 1},
		{name: "exact multiple", totalItems: 30, pageSize: 10, want: 3},
		{name: "partial last page", totalItems: 31, pageSize: 10, want: 4},
		{name: "zero page size uses default", totalItems: 25, pageSize: 0, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateTotalPage(tt.totalItems, tt.pageSize); got != tt.want {
				t.Errorf("CalculateTotalPage(%d, %d) = %d, want %d", tt.totalItems, tt.pageSize, got, tt.want)
			}
		})
	}
}
