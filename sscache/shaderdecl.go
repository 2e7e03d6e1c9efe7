package sscache

import (
	"bytes"
	"strconv"
)

// GLSL float literal precision and the line length at which long kernel
// array literals are broken up.
const (
	decimalDigits = 9
	maxLineLim    = 500
)

// AppendShaderDecls appends the GLSL constant declarations for a packed
// cache, prefixing every identifier with name. The declaration order matches
// the [Cache] field order the shading pass binds to, so the output can be
// pasted or generated straight into a shader that consumes the cache.
func AppendShaderDecls(dst []byte, name string, c Cache) []byte {
	dst = AppendVec4Decl(dst, name+"ThicknessRemap", c.ThicknessRemap)
	dst = AppendVec4Decl(dst, name+"WorldScale", c.WorldScale)
	dst = AppendVec4Decl(dst, name+"ShapeParam", c.ShapeParam)
	dst = AppendVec4Decl(dst, name+"TransmissionTint", c.TransmissionTint)
	dst = AppendVec4Decl(dst, name+"DisabledTransmissionTint", c.DisabledTransmissionTint)
	dst = AppendVec4Decl(dst, name+"HalfRcpWeightedVariances", c.HalfRcpWeightedVariances)
	dst = AppendVec4SliceDecl(dst, name+"FilterKernel", c.FilterKernel[:])
	return dst
}

// AppendVec4Decl appends a GLSL vec4 constant declaration.
func AppendVec4Decl(b []byte, varname string, v Vec4) []byte {
	b = append(b, "vec4 "...)
	b = append(b, varname...)
	b = append(b, "=vec4("...)
	arr := v.Array()
	b = AppendFloats(b, ',', '-', '.', arr[:]...)
	b = append(b, ')', ';', '\n')
	return b
}

// AppendVec4SliceDecl appends a GLSL vec4 array declaration, breaking up
// lines of very long kernel literals.
func AppendVec4SliceDecl(b []byte, varname string, vecs []Vec4) []byte {
	lineStart := len(b)
	b = appendStartSliceDecl(b, "vec4", varname, len(vecs))
	for i, v := range vecs {
		b = append(b, "vec4("...)
		arr := v.Array()
		b = AppendFloats(b, ',', '-', '.', arr[:]...)
		b = append(b, ')')
		if i != len(vecs)-1 {
			b = append(b, ',')
			if len(b)-lineStart > maxLineLim {
				b = append(b, '\n')
				lineStart = len(b)
			}
		}
	}
	b = append(b, ");\n"...)
	return b
}

func appendStartSliceDecl(b []byte, typeName, varName string, length int) []byte {
	typeStart := len(b)
	b = append(b, typeName...)
	b = append(b, '[')
	b = strconv.AppendInt(b, int64(length), 10)
	b = append(b, ']')
	typeEnd := len(b)
	b = append(b, ' ')
	b = append(b, varName...)
	b = append(b, '=')
	b = append(b, b[typeStart:typeEnd]...) // Reuse typename appended earlier.
	b = append(b, '(')
	return b
}

// AppendFloat appends a float32 formatted with fixed precision and trailing
// zeroes trimmed, substituting the negative sign and decimal separator.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

// AppendFloats appends a separated list of float32 literals.
func AppendFloats(b []byte, sep, neg, decimal byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, neg, decimal, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}
