package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/jhoicas/correction-backoffice/pkg/logger"
)

// Background ejecuta trabajos que sobreviven a la petición HTTP que los originó.
// Cada trabajo recibe su propio contexto (context.Background + timeout), nunca el de la petición.
// Los errores y panics se registran; no hay reintentos.
type Background struct {
	wg      conc.WaitGroup
	log     *logger.Logger
	timeout time.Duration
}

// NewBackground construye el ejecutor. timeout <= 0 equivale a 2 minutos.
func NewBackground(log *logger.Logger, timeout time.Duration) *Background {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Background{log: log, timeout: timeout}
}

// Go lanza fn en segundo plano.
func (b *Background) Go(name string, fn func(ctx context.Context) error) {
	b.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				b.log.Error().Str("job", name).Str("panic", fmt.Sprint(r)).Msg("trabajo en segundo plano abortado")
			}
		}()
		if err := fn(ctx); err != nil {
			b.log.Error().Err(err).Str("job", name).Msg("trabajo en segundo plano fallido")
		}
	})
}

// Wait espera a que terminen los trabajos pendientes o a que ctx expire.
func (b *Background) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
