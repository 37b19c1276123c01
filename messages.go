package server

type joinResponse struct {
	Ver     int         `json:"ver"`
	ID      string      `json:"id"`
	Players []Player    `json:"players"`
	Tiles   [][]int     `json:"tiles"`
	Config  WorldConfig `json:"config"`
}

type stateMessage struct {
	Ver        int         `json:"ver"`
	Type       string      `json:"type"`
	Players    []Player    `json:"players"`
	Step       uint64      `json:"t"`
	ServerTime int64       `json:"serverTime"`
	Config     WorldConfig `json:"config"`
}

type diagnosticsPlayer struct {
	Ver           int    `json:"ver"`
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}
