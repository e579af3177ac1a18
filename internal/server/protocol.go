package server

import "encoding/json"

// Request is one inbound wire message: {"action":"NAME","data":{...}}.
type Request struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Response is one outbound wire message.
type Response struct {
	Action string `json:"action"`
	Data   any    `json:"data"`
}

// Inbound action names.
const (
	actRegister        = "REGISTER"
	actLogin           = "LOGIN"
	actPlayerList      = "REQUEST_PLAYER_LIST"
	actGetProfile      = "GET_PROFILE"
	actChallenge       = "CHALLENGE"
	actAccept          = "ACCEPT"
	actDecline         = "DECLINE"
	actMove            = "MOVE"
	actGetValidMoves   = "GET_VALID_MOVES"
	actFindMatch       = "FIND_MATCH"
	actCancelFindMatch = "CANCEL_FIND_MATCH"
	actOfferAbort      = "OFFER_ABORT"
	actAcceptAbort     = "ACCEPT_ABORT"
	actDeclineAbort    = "DECLINE_ABORT"
	actOfferDraw       = "OFFER_DRAW"
	actAcceptDraw      = "ACCEPT_DRAW"
	actDeclineDraw     = "DECLINE_DRAW"
	actOfferRematch    = "OFFER_REMATCH"
	actAcceptRematch   = "ACCEPT_REMATCH"
	actDeclineRematch  = "DECLINE_REMATCH"
	actGetHistory      = "GET_MATCH_HISTORY"
	actGetReplay       = "GET_MATCH_REPLAY"
	actPing            = "PING"
)

// Outbound action names.
const (
	actError            = "ERROR"
	actRegisterSuccess  = "REGISTER_SUCCESS"
	actRegisterFail     = "REGISTER_FAIL"
	actLoginSuccess     = "LOGIN_SUCCESS"
	actLoginFail        = "LOGIN_FAIL"
	actPlayerListReply  = "PLAYER_LIST"
	actProfileInfo      = "PROFILE_INFO"
	actProfileError     = "PROFILE_ERROR"
	actIncomingChall    = "INCOMING_CHALLENGE"
	actChallDeclined    = "CHALLENGE_DECLINED"
	actStartGame        = "START_GAME"
	actMoveOK           = "MOVE_OK"
	actMoveInvalid      = "MOVE_INVALID"
	actOpponentMove     = "OPPONENT_MOVE"
	actValidMoves       = "VALID_MOVES"
	actGameResult       = "GAME_RESULT"
	actDrawOffered      = "DRAW_OFFERED"
	actDrawDeclined     = "DRAW_DECLINED"
	actRematchOffered   = "REMATCH_OFFERED"
	actRematchDeclined  = "REMATCH_DECLINED"
	actMatchmakingState = "MATCHMAKING_STATUS"
	actMatchHistory     = "MATCH_HISTORY"
	actMatchReplay      = "MATCH_REPLAY"
	actPong             = "PONG"
)

func reply(action string, data any) Response {
	if data == nil {
		data = struct{}{}
	}
	return Response{Action: action, Data: data}
}

func errorReply(reason string) Response {
	return reply(actError, map[string]string{"reason": reason})
}

func reasonReply(action, reason string) Response {
	return reply(action, map[string]string{"reason": reason})
}
