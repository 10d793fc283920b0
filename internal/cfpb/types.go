package cfpb

// Complaint is a single consumer-complaint record as returned by the CFPB
// Consumer Complaint Database search API.
type Complaint struct {
	ComplaintID       string `json:"complaint_id"`
	Company           string `json:"company"`
	Product           string `json:"product"`
	SubProduct        string `json:"sub_product"`
	Issue             string `json:"issue"`
	SubIssue          string `json:"sub_issue"`
	State             string `json:"state"`
	ZipCode           string `json:"zip_code"`
	DateReceived      string `json:"date_received"`
	SubmittedVia      string `json:"submitted_via"`
	CompanyResponse   string `json:"company_response"`
	Timely            string `json:"timely"`
	ConsumerDisputed  string `json:"consumer_disputed"`
	Narrative         string `json:"complaint_what_happened"`
	DateSentToCompany string `json:"date_sent_to_company"`
}

// searchResponse is the Elasticsearch-style envelope the API wraps results in
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string    `json:"_id"`
			Source Complaint `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
