package service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Microsoft Entra ID（Azure AD）OAuth2 端点
// 授权与令牌端点带租户路径，用户信息走 Microsoft Graph
var (
	entraLoginBase    = "https://login.microsoftonline.com"
	graphUserInfoURL  = "https://graph.microsoft.com/v1.0/me"
)

// entraScopes 登录所需的最小权限集合
const entraScopes = "openid profile email User.Read"

// EntraTokenData Entra token 端点响应
type EntraTokenData struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	IDToken     string `json:"id_token"`
	Scope       string `json:"scope"`
}

// EntraUserInfo Graph /me 返回的用户信息
// mail 可能为空（无邮箱的账号），此时回退到 userPrincipalName
type EntraUserInfo struct {
	ObjectID          string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// EmailAddress 取用户的登录邮箱，优先 mail，缺失时用 userPrincipalName
func (u *EntraUserInfo) EmailAddress() string {
	if u.Mail != "" {
		return u.Mail
	}
	return u.UserPrincipalName
}

// BuildEntraAuthURL 构建 Entra 授权页面 URL
func BuildEntraAuthURL(tenantID, clientID, redirectURI, state string) string {
	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("response_mode", "query")
	params.Set("scope", entraScopes)
	if state != "" {
		params.Set("state", state)
	}
	return fmt.Sprintf("%s/%s/oauth2/v2.0/authorize?%s", entraLoginBase, tenantID, params.Encode())
}

// ExchangeEntraToken 使用授权码换取 access_token
// token 端点要求 application/x-www-form-urlencoded
func ExchangeEntraToken(tenantID, clientID, clientSecret, code, redirectURI string) (*EntraTokenData, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("scope", entraScopes)

	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", entraLoginBase, tenantID)
	req, err := http.NewRequest("POST", tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 Entra 服务器失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	var tokenData EntraTokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if tokenData.AccessToken == "" {
		var errResp struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.Unmarshal(data, &errResp)
		msg := errResp.ErrorDescription
		if msg == "" {
			msg = string(data)
		}
		return nil, fmt.Errorf("Entra 返回错误: %s", msg)
	}

	return &tokenData, nil
}

// GetEntraUserInfo 使用 access_token 获取 Graph 用户信息
func GetEntraUserInfo(accessToken string) (*EntraUserInfo, error) {
	req, err := http.NewRequest("GET", graphUserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 Graph 服务器失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	var userInfo EntraUserInfo
	if err := json.Unmarshal(data, &userInfo); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if userInfo.ObjectID == "" {
		return nil, fmt.Errorf("Graph 返回的用户信息中无对象 ID")
	}
	return &userInfo, nil
}
