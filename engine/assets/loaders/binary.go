package loaders

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/smok/engine/core"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

/**
 * @brief Reads a SPIR-V binary and returns it as little-endian words.
 */
func LoadSPIRV(path string) ([]uint32, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil, fmt.Errorf("%w: %q is %d bytes, want a non-zero multiple of 4", core.ErrInvalidShader, path, len(buf))
	}
	code := bytesToBytecode(buf)
	if code[0] != SPIRVMagic {
		return nil, fmt.Errorf("%w: %q does not start with the SPIR-V magic number", core.ErrInvalidShader, path)
	}
	return code, nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
