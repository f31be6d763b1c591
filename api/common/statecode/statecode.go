package statecode

const (
	CommonSuccess      = 0
	CommonErrServerErr = 1000

	ParameterEmptyErr = 1101
	NameOrPasswordErr = 1102
	TokenErr          = 1103
	FunctionUnknown   = 1104
	FunctionBusy      = 1105
	InvalidArgument   = 1106

	ConnectionMissing = 1201
	WrongNetwork      = 1202
	ChainUnknown      = 1203
	UserRejected      = 1204
	ContractReverted  = 1205
	TransportErr      = 1206

	RecordsDisabled = 1301
	EventsDisabled  = 1302
)

var Msg = map[int]string{
	CommonSuccess:      "success",
	CommonErrServerErr: "server error",

	ParameterEmptyErr: "parameter is empty",
	NameOrPasswordErr: "wrong name or password",
	TokenErr:          "token invalid",
	FunctionUnknown:   "function unknown",
	FunctionBusy:      "a call to this function is already in progress",
	InvalidArgument:   "invalid argument",

	ConnectionMissing: "wallet not connected",
	WrongNetwork:      "wrong network",
	ChainUnknown:      "network unknown to wallet",
	UserRejected:      "rejected in wallet",
	ContractReverted:  "contract reverted",
	TransportErr:      "transport error",

	RecordsDisabled: "invocation records disabled",
	EventsDisabled:  "event log disabled",
}

func GetMsg(code int) string {
	if msg, ok := Msg[code]; ok {
		return msg
	}
	return Msg[CommonErrServerErr]
}
