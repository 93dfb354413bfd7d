package chainlens

import "github.com/gammazero/deque"

// trailingWindow holds the last size values of a series and counts the missing ones among them.
type trailingWindow struct {
	size    int
	values  deque.Deque[*float64]
	missing int
}

func newTrailingWindow(size int) *trailingWindow {
	return &trailingWindow{size: size}
}

func (w *trailingWindow) push(value *float64) {
	w.values.PushBack(value)
	if value == nil {
		w.missing++
	}
	for w.values.Len() > w.size {
		if w.values.PopFront() == nil {
			w.missing--
		}
	}
}

// complete is true once the window is full and none of its values is missing.
func (w *trailingWindow) complete() bool {
	return w.values.Len() == w.size && w.missing == 0
}

// getValues must only be called on a complete window.
func (w *trailingWindow) getValues() []float64 {
	output := make([]float64, w.values.Len())
	for i := range output {
		output[i] = *w.values.At(i)
	}
	return output
}
