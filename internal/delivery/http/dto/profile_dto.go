package dto

import "podium/internal/domain/profile"

// CreateProfileRequest names the sources to aggregate. Every field is
// optional; an all-empty extraction is rejected downstream.
type CreateProfileRequest struct {
	FileURLs    []string `json:"file_urls"`
	YouTubeURL  string   `json:"youtube_url"`
	WebsiteURL  string   `json:"website_url"`
	LinkedInURL string   `json:"linkedin_url"`
}

type PersonalProfileRequest struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
}

func (r PersonalProfileRequest) ToDomain() profile.Personal {
	return profile.Personal{
		FullName: r.FullName,
		Address:  r.Address,
		Phone:    r.Phone,
		Website:  r.Website,
	}
}
