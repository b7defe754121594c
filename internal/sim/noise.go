package sim

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Параметры шума для углов волн спавна
const (
	noiseAlpha   = 2.0 // Сглаживание шума
	noiseBeta    = 2.0 // Частота шума
	noiseOctaves = int32(3)
)

// WaveNoise выдаёт плавно меняющийся угол направления волны.
// Генератор свой у каждой сессии, глобального состояния нет.
type WaveNoise struct {
	p     *perlin.Perlin
	scale float64
}

// NewWaveNoise создаёт генератор с сидом seed; scale задаёт скорость изменения угла во времени
func NewWaveNoise(seed int64, scale float64) *WaveNoise {
	return &WaveNoise{
		p:     perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
		scale: scale,
	}
}

// Angle возвращает угол волны в радианах для момента t (секунды)
func (w *WaveNoise) Angle(t float64) float64 {
	// Noise1D возвращает примерно [-1, 1]; растягиваем на два оборота,
	// чтобы волна могла обойти игрока целиком
	return w.p.Noise1D(t*w.scale) * 2 * math.Pi * 2
}
