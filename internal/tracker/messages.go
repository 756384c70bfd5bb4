package tracker

import (
	"errors"

	"github.com/dvloznov/smartbudget/internal/advisory"
	"github.com/dvloznov/smartbudget/internal/ledger"
)

// User-facing messages, in the advisor's voice.
const (
	MsgNoData            = "Rocío: Che, necesito que cargues algún gasto primero para poder analizarte bien. 🌸"
	MsgReceiptUnreadable = "¡Ay! No pude leer bien el ticket, amiga. ¿Me pasás una foto con más luz? Atte: Rocío 🌸"
	MsgReceiptRead       = "¡Listo, amiga! Rocío ya leyó el ticket. Solo revisá que todo esté bien. 🌸"
	MsgUnavailable       = "Ups, algo salió mal. ¡Probemos otra vez!"
	MsgBusy              = "Rocío ya está en eso, esperá un momentito. 🌸"
	MsgNotFound          = "No encontré ese registro, amiga."
	MsgInvalid           = "Revisá los datos, amiga: "
)

// UserMessage turns any error from the service into the text shown to the
// user.
func UserMessage(err error) string {
	var ve *ledger.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, advisory.ErrNoData):
		return MsgNoData
	case errors.Is(err, advisory.ErrReceiptUnreadable):
		return MsgReceiptUnreadable
	case errors.Is(err, ErrBusy):
		return MsgBusy
	case errors.As(err, &ve):
		return MsgInvalid + ve.Field + " " + ve.Reason
	case errors.Is(err, ledger.ErrNotFound):
		return MsgNotFound
	default:
		return MsgUnavailable
	}
}
