package filters

import "fmt"

// RunLengthDecode expands PackBits-style runs. A length byte n in 0..127 is
// followed by n+1 literal bytes; 129..255 repeats the next byte 257-n times;
// 128 ends the data.
func RunLengthDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		switch {
		case n == 128:
			return out, nil
		case n < 128:
			if i+n+1 > len(data) {
				return nil, fmt.Errorf("literal run of %d bytes at %d exceeds input", n+1, i-1)
			}
			out = append(out, data[i:i+n+1]...)
			i += n + 1
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("repeat run at %d has no byte", i-1)
			}
			for k := 0; k < 257-n; k++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	return out, nil
}
