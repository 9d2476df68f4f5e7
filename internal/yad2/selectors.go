// Package yad2 drives a headless browser against the yad2.co.il real-estate
// search and parses its pages into domain shapes.
package yad2

// Feed page selectors. The site ships hashed CSS module class names, so
// everything matches on the stable prefix.
const (
	selFeedContainer = `[class*="feed-list_feed_"]`
	selFeedItem      = `[data-nagish="feed-item-list-box"]`
	selItemLink      = `a`

	selPrice      = `[class*="price_price__"]`
	selAgencyBox  = `[class*="price-and-extra_box__"]`
	selAgencyName = `[class*="price-and-extra_startFrom__"]`

	selStreetName   = `[class*="item-data-content_heading__"]`
	selLocationInfo = `[class*="item-data-content_itemInfoLine__"][class*="first__"]`
	selSpecs        = `[class*="item-data-content_itemInfoLine__"]:not([class*="first__"])`

	selTagsBox    = `[class*="item-tags_itemTagsBox__"]`
	selLikeButton = `[data-testid="like-button"]`
)

// Detail page selectors.
const (
	selBuildingDetail = `span[class*="building-item_details"]`
	selBuildingValue  = `span[class*="building-item_itemValue"]`

	selFeatureSection = `section[data-testid="in-property"]`
	selFeatureItem    = `[data-testid="in-property-item"]`
	selFeatureText    = `span[class*="in-property-item_text"]`
	featureDisabled   = "in-property-item_disabled"

	selContactInfo   = `[data-testid="opened-contact-info"]`
	selContactName   = `span[class*="private-contact-info_name"]`
	selContactPhone  = `span[class*="phone-number-link_phoneNumberText"]`
	selContactButton = `[data-testid="show-details-button"]`
)

// Pagination selectors.
const (
	selPaginationNav  = `nav[data-nagish="pagination-navbar"]`
	selPaginationText = `nav[data-nagish="pagination-navbar"] span:first-of-type`
)

// Saved-items page selectors.
const (
	selSavedItem     = `[data-nagish="feed-item-list-box"]`
	selSavedItemLink = `a[href*="/item/"]`
)
