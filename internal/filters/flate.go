package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// FlateDecode inflates zlib data and undoes the predictor named in params.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib header: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		// Truncated streams are common; keep what was inflated.
		if len(out) == 0 || err != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("inflate: %w", err)
		}
	}

	predictor := intParam(params, "Predictor", 1)
	if predictor == 1 {
		return out, nil
	}
	return unpredict(out, predictor, params)
}

// FlateEncode deflates data with the default compression level.
func FlateEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rowLayout describes the sample layout a predictor operates on.
type rowLayout struct {
	colors  int
	bpc     int
	columns int
}

func layoutFrom(params Params) rowLayout {
	return rowLayout{
		colors:  intParam(params, "Colors", 1),
		bpc:     intParam(params, "BitsPerComponent", 8),
		columns: intParam(params, "Columns", 1),
	}
}

// rowBytes is the number of bytes in one row of samples.
func (l rowLayout) rowBytes() int {
	return (l.columns*l.colors*l.bpc + 7) / 8
}

// pixelBytes is the byte distance to the corresponding sample on the left,
// at least 1.
func (l rowLayout) pixelBytes() int {
	n := (l.colors*l.bpc + 7) / 8
	if n < 1 {
		return 1
	}
	return n
}

func unpredict(data []byte, predictor int, params Params) ([]byte, error) {
	l := layoutFrom(params)
	if l.colors < 1 || l.columns < 1 || l.bpc < 1 {
		return nil, fmt.Errorf("invalid predictor layout %+v", l)
	}
	switch {
	case predictor == 2:
		return unpredictTIFF(data, l)
	case predictor >= 10 && predictor <= 15:
		return unpredictPNG(data, l)
	}
	return nil, fmt.Errorf("unsupported predictor %d", predictor)
}

// unpredictTIFF reverses TIFF predictor 2 for 8-bit samples.
func unpredictTIFF(data []byte, l rowLayout) ([]byte, error) {
	if l.bpc != 8 {
		return nil, fmt.Errorf("TIFF predictor with %d bits per component", l.bpc)
	}
	stride := l.rowBytes()
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of row length %d", len(data), stride)
	}
	out := bytes.Clone(data)
	for row := 0; row < len(out); row += stride {
		for i := l.colors; i < stride; i++ {
			out[row+i] += out[row+i-l.colors]
		}
	}
	return out, nil
}

// unpredictPNG reverses the per-row PNG filters. Each encoded row carries a
// leading filter-type byte.
func unpredictPNG(data []byte, l rowLayout) ([]byte, error) {
	stride := l.rowBytes()
	bpp := l.pixelBytes()
	rows := len(data) / (stride + 1)
	if rows*(stride+1) != len(data) {
		return nil, fmt.Errorf("data length %d is not a multiple of row length %d", len(data), stride+1)
	}

	out := make([]byte, 0, rows*stride)
	prev := make([]byte, stride)
	for r := 0; r < rows; r++ {
		src := data[r*(stride+1):]
		kind, cur := src[0], bytes.Clone(src[1:stride+1])
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]
			switch kind {
			case 0:
			case 1:
				cur[i] += left
			case 2:
				cur[i] += up
			case 3:
				cur[i] += byte((int(left) + int(up)) / 2)
			case 4:
				cur[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("row %d: unknown PNG filter %d", r, kind)
			}
		}
		out = append(out, cur...)
		prev = cur
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
