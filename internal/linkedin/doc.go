// Package linkedin scrapes LinkedIn job search results and people search
// results. Two backends share one card extractor: BrowserScraper drives a real
// Chrome through chromedp, and GuestScraper walks the public guest endpoint
// with colly. A saved cookie session (linkedin_cookies.json) gives the browser
// authenticated access.
package linkedin
