package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

// Tiêu đề cột khi nhập cơ sở kinh doanh từ file, chỉ gồm các trường nhập tay
var storeImportHeader = []string{
	"Mã cơ sở",
	"Tên cơ sở",
	"Chủ cơ sở",
	"Mã số thuế",
	"Điện thoại",
	"Địa chỉ",
}

// Tiêu đề cột khi xuất sổ đăng ký
var storeExportHeader = []string{
	"Mã cơ sở",
	"Tên cơ sở",
	"Chủ cơ sở",
	"Mã số thuế",
	"Điện thoại",
	"Địa chỉ",
	"Trạng thái",
	"Ngày tạo",
}

// exportStoreLimit chặn số dòng tối đa của một lần xuất file.
const exportStoreLimit = 10000

// ExportStores xuất sổ đăng ký cơ sở kinh doanh trong phạm vi của người đang
// thao tác ra file Excel.
func (h *Handler) ExportStores(w http.ResponseWriter, r *http.Request) {
	sel, ok, err := h.storeSelectionFromRequest(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	stores := []*domain.Store{}
	if ok {
		sel.Limit = exportStoreLimit
		stores, _, err = h.repository.SelectStores(r.Context(), sel)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	f, err := buildStoreWorkbook(storeExportHeader, stores)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	defer f.Close()

	h.writeWorkbook(w, r, f, fmt.Sprintf("so-dang-ky-%s.xlsx", time.Now().Format("20060102")))
}

// GetStoreImportTemplate trả về file mẫu chỉ gồm dòng tiêu đề.
func (h *Handler) GetStoreImportTemplate(w http.ResponseWriter, r *http.Request) {
	f, err := buildStoreWorkbook(storeImportHeader, nil)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	defer f.Close()

	h.writeWorkbook(w, r, f, "mau-nhap-co-so.xlsx")
}

func (h *Handler) writeWorkbook(w http.ResponseWriter, r *http.Request, f *excelize.File, filename string) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := f.WriteTo(w); err != nil {
		// Header đã gửi đi rồi, chỉ còn ghi log
		h.logInternalServerError(r, err)
	}
}

func buildStoreWorkbook(headers []string, stores []*domain.Store) (*excelize.File, error) {
	f := excelize.NewFile()

	const sheetName = "Cơ sở kinh doanh"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("tạo sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("tạo style tiêu đề: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.SetColWidth(sheetName, "A", "F", 20); err != nil {
		f.Close()
		return nil, err
	}

	for i, s := range stores {
		status := "Ngừng hoạt động"
		if s.IsActive {
			status = "Đang hoạt động"
		}

		values := []any{s.Code, s.Name, s.OwnerName, s.TaxCode, s.Phone, s.Address, status, s.CreatedAt.Format("02/01/2006")}
		for col, value := range values {
			if col >= len(headers) {
				break
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}
