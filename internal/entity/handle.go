package entity

import "fmt"

// Handle ссылается на слот сущности вместе с его поколением.
// Поколение увеличивается при каждом освобождении слота, поэтому ссылка,
// сохранённая до despawn, перестаёт совпадать с новым жильцом слота.
// Нулевое поколение никогда не выдаётся: Handle{} всегда невалиден.
type Handle struct {
	Index uint32
	Gen   uint32
}

// Valid сообщает, был ли handle когда-либо выдан менеджером
func (h Handle) Valid() bool {
	return h.Gen != 0
}

// String возвращает handle в виде "index:gen"
func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.Index, h.Gen)
}

// nextGen возвращает следующее поколение, пропуская ноль при переполнении
func nextGen(g uint32) uint32 {
	g++
	if g == 0 {
		g = 1
	}
	return g
}
