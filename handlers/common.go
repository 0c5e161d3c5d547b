package handlers

import (
    "encoding/json"
    "errors"
    "net/http"
)

const maxBodyBytes = 1 << 20

func decodeJSONBody(r *http.Request, dst interface{}) error {
    if r.Body == nil {
        return errors.New("empty request body")
    }
    r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
    if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
        return err
    }
    return nil
}
