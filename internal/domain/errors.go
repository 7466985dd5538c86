package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// ErrValidation entrada mal formada para el generador de PDF (ej. factura nil).
	ErrValidation = errors.New("validation error")
	// ErrStorage cualquier fallo del almacenamiento de objetos distinto de "no existe".
	ErrStorage = errors.New("storage error")
	// ErrRender fallo interno al maquetar el PDF.
	ErrRender = errors.New("render error")
)
