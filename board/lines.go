package board

// Row, column and 2x2 zone masks. A line holding all four shapes wins the
// game; a line holding the same shape in both colours is illegal.
var (
	RowMasks = [Dim]uint16{
		0b0000000000001111,
		0b0000000011110000,
		0b0000111100000000,
		0b1111000000000000,
	}
	ColumnMasks = [Dim]uint16{
		0b0001000100010001,
		0b0010001000100010,
		0b0100010001000100,
		0b1000100010001000,
	}
	ZoneMasks = [Dim]uint16{
		0b0000000000110011, // top-left
		0b0000000011001100, // top-right
		0b0011001100000000, // bottom-left
		0b1100110000000000, // bottom-right
	}

	// LineMasks is rows, then columns, then zones.
	LineMasks [12]uint16

	// cellLines[i] is the union of every line through cell i.
	cellLines [NumCells]uint16
)

func init() {
	n := copy(LineMasks[:], RowMasks[:])
	n += copy(LineMasks[n:], ColumnMasks[:])
	copy(LineMasks[n:], ZoneMasks[:])

	for cell := 0; cell < NumCells; cell++ {
		bit := uint16(1) << uint(cell)
		for _, m := range LineMasks {
			if m&bit != 0 {
				cellLines[cell] |= m
			}
		}
	}
}

// LinesThrough returns the union of the row, column and zone containing
// cell.
func LinesThrough(cell int) uint16 {
	return cellLines[cell]
}
