package engine

import "github.com/launchdarkly/go-jsonstream/v3/jwriter"

// WriteJSON emits a structured dump of every physical block in address
// order: header offset, size, and either "Allocated" or the size-class
// bucket a free block currently lives in.
func (e *Engine) WriteJSON(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	stats := e.Statistics()
	obj.Name("HeapSize").Int(stats.HeapSize)
	obj.Name("AllocatedBytes").Int(stats.AllocatedBytes)
	obj.Name("FreeBytes").Int(stats.FreeBytes)

	arr := obj.Name("Blocks").Array()
	e.walk(func(header, size int, allocated bool) {
		b := arr.Object()
		defer b.End()

		b.Name("Header").Int(header)
		b.Name("Size").Int(size)
		if allocated {
			b.Name("Type").String("Allocated")
			return
		}
		buf := e.p.Bytes()
		b.Name("Type").String("Free")
		b.Name("Bucket").Int(sizeclassIndex(buf, header))
	})
	arr.End()
}
