package ipfs

// Wire shapes for the daemon RPC responses. The daemon decorates responses
// with extra fields across versions, so decoding is lenient about unknown
// keys; each shape instead reports through ok() whether the fields the
// contract requires were actually present. An error payload decoded into one
// of these shapes leaves the required fields empty, which is what routes it
// to the error path in decodeResponse.

type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

func (r *addResponse) ok() bool { return r.Hash != "" }

type pinResponse struct {
	Pins []string `json:"Pins"`
}

func (r *pinResponse) ok() bool { return r.Pins != nil }

// cidRef is the nested identifier form {"/": "<cid>"} the daemon uses inside
// dag/put responses.
type cidRef struct {
	Target string `json:"/"`
}

type dagPutResponse struct {
	Cid cidRef `json:"Cid"`
}

func (r *dagPutResponse) ok() bool { return r.Cid.Target != "" }

type keyInfo struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

type keyListResponse struct {
	Keys []keyInfo `json:"Keys"`
}

func (r *keyListResponse) ok() bool { return r.Keys != nil }

type namePublishResponse struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

func (r *namePublishResponse) ok() bool { return r.Name != "" && r.Value != "" }

type nameResolveResponse struct {
	Path string `json:"Path"`
}

func (r *nameResolveResponse) ok() bool { return r.Path != "" }

type idResponse struct {
	ID string `json:"ID"`
}

func (r *idResponse) ok() bool { return r.ID != "" }

// pubsubEvent is one NDJSON line on a subscription stream. The daemon also
// sends seqno and topic fields, which this client does not consume.
type pubsubEvent struct {
	From string `json:"from"`
	Data string `json:"data"`
}

func (r *pubsubEvent) ok() bool { return r.From != "" && r.Data != "" }
