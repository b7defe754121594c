package sim

import (
	"sort"
	"time"
)

// Step шаг кадрового конвейера
type Step interface {
	Name() string
	Update(dt time.Duration)
}

// StepFunc адаптер функции к Step
type StepFunc struct {
	StepName string
	Fn       func(dt time.Duration)
}

func (s StepFunc) Name() string            { return s.StepName }
func (s StepFunc) Update(dt time.Duration) { s.Fn(dt) }

type registeredStep struct {
	priority int
	seq      int
	step     Step
}

// Pipeline выполняет шаги строго по возрастанию приоритета;
// при равном приоритете сохраняется порядок регистрации.
type Pipeline struct {
	steps []registeredStep
	seq   int
}

// NewPipeline создаёт пустой конвейер
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Register добавляет шаг с приоритетом priority
func (p *Pipeline) Register(priority int, step Step) {
	p.steps = append(p.steps, registeredStep{priority: priority, seq: p.seq, step: step})
	p.seq++
	sort.SliceStable(p.steps, func(i, j int) bool {
		if p.steps[i].priority != p.steps[j].priority {
			return p.steps[i].priority < p.steps[j].priority
		}
		return p.steps[i].seq < p.steps[j].seq
	})
}

// Names возвращает имена шагов в порядке выполнения
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.step.Name()
	}
	return names
}

// Run выполняет один кадр
func (p *Pipeline) Run(dt time.Duration) {
	for _, s := range p.steps {
		s.step.Update(dt)
	}
}
