package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"
)

// GetRealIP extracts the real client IP from the request, preferring
// X-Real-IP, then the first public address in X-Forwarded-For, then gin's
// own resolution.
func GetRealIP(c *gin.Context) string {
	realIP := c.Request.Header.Get("X-Real-IP")
	if realIP != "" && isValidIP(realIP) && !isPrivateIP(net.ParseIP(realIP)) {
		return strings.TrimSpace(realIP)
	}

	forwarded := c.Request.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		for _, ipStr := range ips {
			clientIP := strings.TrimSpace(ipStr)
			if isValidIP(clientIP) {
				ip := net.ParseIP(clientIP)
				if !isPrivateIP(ip) && !isLocalhost(clientIP) {
					return clientIP
				}
			}
		}
		if len(ips) > 0 {
			clientIP := strings.TrimSpace(ips[0])
			if isValidIP(clientIP) {
				return clientIP
			}
		}
	}

	return c.ClientIP()
}

// ClientInfo captures where a request came from, recorded in booking
// metadata for audit purposes
type ClientInfo struct {
	IP       string `json:"ip"`
	Browser  string `json:"browser"`
	OS       string `json:"os"`
	IsMobile bool   `json:"is_mobile"`
}

// GetClientInfo parses the request's network and User-Agent details
func GetClientInfo(c *gin.Context) ClientInfo {
	ua := user_agent.New(c.Request.UserAgent())
	browser, version := ua.Browser()
	if browser == "" {
		browser = "Unknown"
	} else if version != "" {
		browser = browser + " " + version
	}

	return ClientInfo{
		IP:       GetRealIP(c),
		Browser:  browser,
		OS:       ua.OS(),
		IsMobile: ua.Mobile(),
	}
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

func isLocalhost(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1" || ip == "localhost"
}

func isPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}

	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
	}

	for _, cidr := range privateRanges {
		_, subnet, _ := net.ParseCIDR(cidr)
		if subnet.Contains(ip) {
			return true
		}
	}

	return false
}
