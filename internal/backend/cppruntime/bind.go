package cppruntime

import (
	"fmt"
	"strings"
)

// InputBindConstruction emits the C++ runtime's storage allocation for one
// input bind, converting `uchar4 {r,g,b}` to `float3` for bitmap images.
func InputBindConstruction(helperName, elementCType string, isBitmap bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s(const uint8_t *src, int width, int height) {\n", elementCType, helperName)
	fmt.Fprintf(&b, "  %s *buf = new %s[width * height];\n", elementCType, elementCType)
	if isBitmap {
		fmt.Fprintf(&b, "  for (int i = 0; i < width * height; i++) {\n")
		fmt.Fprintf(&b, "    buf[i] = %s(src[i*4] / 255.0f, src[i*4+1] / 255.0f, src[i*4+2] / 255.0f);\n", elementCType)
		fmt.Fprintf(&b, "  }\n")
	} else {
		fmt.Fprintf(&b, "  memcpy(buf, src, sizeof(%s) * width * height);\n", elementCType)
	}
	fmt.Fprintf(&b, "  return buf;\n")
	fmt.Fprintf(&b, "}\n")
	return b.String()
}

// OutputBindCopyOut emits the inverse of InputBindConstruction. Bitmap
// images get a fixed output alpha channel of 255.
func OutputBindCopyOut(helperName, elementCType string, isBitmap bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "void %s(const %s *buf, int width, int height, uint8_t *dst) {\n", helperName, elementCType)
	if isBitmap {
		fmt.Fprintf(&b, "  for (int i = 0; i < width * height; i++) {\n")
		fmt.Fprintf(&b, "    dst[i*4+0] = (uint8_t)(buf[i].s0 * 255.0f);\n")
		fmt.Fprintf(&b, "    dst[i*4+1] = (uint8_t)(buf[i].s1 * 255.0f);\n")
		fmt.Fprintf(&b, "    dst[i*4+2] = (uint8_t)(buf[i].s2 * 255.0f);\n")
		fmt.Fprintf(&b, "    dst[i*4+3] = 255;\n")
		fmt.Fprintf(&b, "  }\n")
	} else {
		fmt.Fprintf(&b, "  memcpy(dst, buf, sizeof(%s) * width * height);\n", elementCType)
	}
	fmt.Fprintf(&b, "}\n")
	return b.String()
}
