package mpesa

import "fmt"

type accessTokenResponse struct {
    AccessToken  string `json:"access_token"`
    ExpiresIn    string `json:"expires_in"`
    ErrorMessage string `json:"errorMessage"`
}

type stkPushRequest struct {
    BusinessShortCode string `json:"BusinessShortCode"`
    Password          string `json:"Password"`
    Timestamp         string `json:"Timestamp"`
    TransactionType   string `json:"TransactionType"`
    Amount            int    `json:"Amount"`
    PartyA            string `json:"PartyA"`
    PartyB            string `json:"PartyB"`
    PhoneNumber       string `json:"PhoneNumber"`
    CallBackURL       string `json:"CallBackURL"`
    AccountReference  string `json:"AccountReference"`
    TransactionDesc   string `json:"TransactionDesc"`
}

type stkQueryRequest struct {
    BusinessShortCode string `json:"BusinessShortCode"`
    Password          string `json:"Password"`
    Timestamp         string `json:"Timestamp"`
    CheckoutRequestID string `json:"CheckoutRequestID"`
}

// GatewayResponse is the gateway JSON body passed through verbatim. Failures
// are carried as a value with the "error" key set, never as a Go error, so
// callers handle upstream rejections and transport faults uniformly.
type GatewayResponse map[string]interface{}

func (r GatewayResponse) Failed() bool {
    flag, ok := r["error"].(bool)
    return ok && flag
}

func (r GatewayResponse) Simulated() bool {
    flag, ok := r["simulation"].(bool)
    return ok && flag
}

func (r GatewayResponse) CheckoutRequestID() string {
    s, _ := r["CheckoutRequestID"].(string)
    return s
}

func (r GatewayResponse) MerchantRequestID() string {
    s, _ := r["MerchantRequestID"].(string)
    return s
}

func (r GatewayResponse) ResponseCode() string {
    s, _ := r["ResponseCode"].(string)
    return s
}

func (r GatewayResponse) ResponseDescription() string {
    s, _ := r["ResponseDescription"].(string)
    return s
}

// ResultCode returns the settlement result code from a status query
// response. The gateway encodes it as a string.
func (r GatewayResponse) ResultCode() (string, bool) {
    s, ok := r["ResultCode"].(string)
    return s, ok
}

func failureResponse(format string, args ...interface{}) GatewayResponse {
    return GatewayResponse{
        "ResponseCode":        "1",
        "ResponseDescription": fmt.Sprintf(format, args...),
        "error":               true,
    }
}
