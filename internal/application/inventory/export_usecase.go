package inventory

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tu-usuario/warehouse-pro/internal/application/dto"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

// exportPageSize tamaño de página al recorrer el libro para exportar.
const exportPageSize = 500

// exportMaxRows tope de filas por archivo; exportaciones mayores deben acotarse por fecha.
const exportMaxRows = 10000

// ExportUseCase genera el historial de movimientos filtrado como archivo .xlsx.
type ExportUseCase struct {
	movRepo repository.StockMovementRepository
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(movRepo repository.StockMovementRepository) *ExportUseCase {
	return &ExportUseCase{movRepo: movRepo}
}

// ExportMovements recorre el historial con los mismos filtros de ListMovements y
// devuelve el contenido del archivo Excel.
func (uc *ExportUseCase) ExportMovements(ctx context.Context, q dto.StockHistoryQuery) ([]byte, error) {
	filter, err := buildFilter(q, "", "")
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"ID", "Fecha", "Producto", "SKU", "Tipo", "Cantidad",
		"Saldo anterior", "Saldo nuevo", "Motivo", "Referencia", "Usuario", "Notas",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("export: encabezado: %w", err)
	}

	row := 2
	offset := 0
	for {
		items, _, err := uc.movRepo.List(ctx, filter, exportPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, m := range items {
			excelRow := []interface{}{
				m.ID,
				m.MovementDate.Format("2006-01-02 15:04:05"),
				m.ProductName,
				m.SKUCode(),
				m.Type,
				m.Quantity,
				m.PreviousStock,
				m.CurrentStock,
				m.Reason,
				m.ReferenceNumber,
				m.UserName,
				m.Notes,
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, fmt.Errorf("export: celda: %w", err)
			}
			if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
				return nil, fmt.Errorf("export: fila: %w", err)
			}
			row++
		}
		if len(items) < exportPageSize || row > exportMaxRows {
			break
		}
		offset += exportPageSize
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("export: escribir archivo: %w", err)
	}
	return buf.Bytes(), nil
}
