// Package formtest assembles small AcroForm PDFs in memory for tests.
package formtest

import (
	"bytes"
	"fmt"
	"strings"
)

// Builder writes numbered objects and a classic cross-reference table with
// exact byte offsets.
type Builder struct {
	objects []string
}

// Reserve allocates the next object number. Its body is set later with Set.
func (b *Builder) Reserve() int {
	b.objects = append(b.objects, "null")
	return len(b.objects)
}

// Add appends an object and returns its number
func (b *Builder) Add(body string) int {
	n := b.Reserve()
	b.Set(n, body)
	return n
}

// Set replaces the body of object n
func (b *Builder) Set(n int, body string) {
	b.objects[n-1] = body
}

// Ref formats an indirect reference to object n
func Ref(n int) string {
	return fmt.Sprintf("%d 0 R", n)
}

// Refs formats an array of indirect references
func Refs(ns ...int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = Ref(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Stream formats a stream object with a correct /Length
func Stream(dict, data string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// Bytes serializes all objects with root as the document catalog
func (b *Builder) Bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objects)+1)
	buf.WriteString("0000000000 65535 f\r\n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %s >>\nstartxref\n%d\n%%%%EOF\n",
		len(b.objects)+1, Ref(root), xref)
	return buf.Bytes()
}
