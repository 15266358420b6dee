package orchestrator

import "encoding/json"

func encodeCachedResponse(opps []Opportunity) ([]byte, error) {
	if opps == nil {
		opps = []Opportunity{}
	}
	return json.Marshal(opps)
}

func decodeCachedResponse(id string, payload []byte) (SearchResponse, error) {
	var opps []Opportunity
	if err := json.Unmarshal(payload, &opps); err != nil {
		return SearchResponse{}, err
	}
	return SearchResponse{ID: id, Opportunities: opps}, nil
}
