// Package arr talks to the Sonarr/Radarr v3 queue API. It fetches the
// active download queue page by page and removes queue entries by
// download id. Both backends expose the same queue shape, so the Kind
// only selects the variant for validation and logging.
package arr
