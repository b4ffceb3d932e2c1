package services

import (
	"sync/atomic"

	"mdmserver/engine"
)

// EngineHolder текущий движок. Перезагрузка справочника подменяет движок
// целиком, запросы в процессе работают со своей копией.
type EngineHolder struct {
	current atomic.Pointer[engine.Engine]
}

// NewEngineHolder создает держатель с начальным движком
func NewEngineHolder(e *engine.Engine) *EngineHolder {
	h := &EngineHolder{}
	h.current.Store(e)
	return h
}

// Load текущий движок
func (h *EngineHolder) Load() *engine.Engine {
	return h.current.Load()
}

// Swap устанавливает новый движок и возвращает предыдущий
func (h *EngineHolder) Swap(e *engine.Engine) *engine.Engine {
	return h.current.Swap(e)
}
