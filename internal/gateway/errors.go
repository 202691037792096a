package gateway

import (
	"github.com/terraincognita07/taskdesk/internal/services"
	"go.uber.org/zap"
)

var wireKinds = map[services.Kind]ErrorKind{
	services.KindValidation:        KindValidation,
	services.KindNotFound:          KindNotFound,
	services.KindInvalidCredential: KindInvalidCredential,
	services.KindForbidden:         KindForbidden,
	services.KindStorage:           KindStorage,
}

const storageCode = "storage"

// failure converts err into a failed Result. Storage causes are logged here
// and replaced by a generic message.
func failure[T any](g *Gateway, c *call, err error) Result[T] {
	kind := services.KindOf(err)
	code := services.CodeOf(err)
	if kind == services.KindStorage {
		g.logger.Error("storage failure",
			zap.String("operation", c.command.Operation),
			zap.Error(err),
		)
		code = storageCode
	}

	return Fail[T](ErrorInfo{
		Kind:    wireKinds[kind],
		Code:    code,
		Message: g.message(c.language, code, err, kind),
	})
}

func (g *Gateway) message(language string, code string, err error, kind services.Kind) string {
	if g.messages != nil {
		if text, ok := g.messages.Lookup(language, "error."+code); ok {
			return text
		}
	}
	if kind == services.KindStorage {
		return "internal storage error"
	}
	return err.Error()
}
