package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ModuleDBridge = "dbridge"
)

// metrics labels.
const (
	LabelClient = "client"

	LblType   = "type"
	LblResult = "result"

	TypeQuery   = "query"
	TypeUpdate  = "update"
	TypePrepare = "prepare"

	opSucc   = "ok"
	opFailed = "err"
)

// RetLabel returns "ok" when err == nil and "err" when err != nil.
// This could be useful when you need to observe the operation result.
func RetLabel(err error) string {
	if err == nil {
		return opSucc
	}
	return opFailed
}

func RegisterClientMetrics() {
	prometheus.MustRegister(ConnGauge)
	prometheus.MustRegister(ExecuteTotalCounter)
	prometheus.MustRegister(ExecuteDurationHistogram)
}
