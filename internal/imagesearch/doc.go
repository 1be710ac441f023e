// Package imagesearch finds cover images with the Custom Search JSON API and
// downloads them, rejecting responses that are not decodable images.
package imagesearch
