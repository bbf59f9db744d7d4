package cloudways

// tokenResponse is the OAuth token exchange response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// App is a single application provisioned on a server.
type App struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Application string `json:"application"`
	ServerID    string `json:"server_id"`
}

// appListResponse wraps the /app listing.
type appListResponse struct {
	Apps []App `json:"apps"`
}

// Server is a provisioned server and its scaling state.
type Server struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Status  string `json:"status"`
	Scaling bool   `json:"is_scaling"`
}

// serverListResponse wraps the /server listing.
type serverListResponse struct {
	Servers []Server `json:"servers"`
}

// scaleRequest is the /server/scaleServer payload.
type scaleRequest struct {
	ServerID  string `json:"server_id"`
	RAMGB     int    `json:"ram"`
	CPUCores  int    `json:"cpu"`
	StorageGB int    `json:"storage"`
}

// Ready reports whether the server is running and not mid-scale.
func (s Server) Ready() bool {
	return s.Status == "running" && !s.Scaling
}
