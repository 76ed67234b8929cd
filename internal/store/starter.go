package store

import (
	"context"
	"errors"

	"github.com/pbaille/toolscout/internal/domain"
)

// StarterTools is the built-in catalog served when no backend is configured
// and written by Seed. IDs and timestamps are left to the backend.
func StarterTools() []domain.Tool {
	return []domain.Tool{
		{Name: "AKOOL", Description: "AI Video Creation Made Easy: Avatars, Translation, and Face Swap in One Platform",
			Website: "https://akool.com", Category: domain.CategoryVideoEditing, Difficulty: domain.Beginner,
			Pricing: domain.PricingFreemium, Color: "bg-phoenix"},
		{Name: "PixAI", Description: "World's No.1 Anime & Character Generation AI",
			Website: "https://pixai.art/en", Category: domain.CategoryDesign, Difficulty: domain.Beginner,
			Pricing: domain.PricingPaid, Color: "bg-chartreuse"},
		{Name: "RecCloud", Description: "AI Audio & Video Processing platform for creators",
			Website: "https://reccloud.com", Category: domain.CategoryAudio, Difficulty: domain.Beginner,
			Pricing: domain.PricingFreemium, Color: "bg-cornflower"},
		{Name: "KREA AI", Description: "AI Creative Suite for Images, Video & 3D content generation",
			Website: "https://www.krea.ai", Category: domain.CategoryDesign, Difficulty: domain.Intermediate,
			Pricing: domain.PricingFreemium, Color: "bg-lavender"},
		{Name: "Gamma", Description: "Effortless AI design for presentations, websites, and more",
			Website: "https://gamma.app", Category: domain.CategoryDesign, Difficulty: domain.Beginner,
			Pricing: domain.PricingFreemium, Color: "bg-magnolia"},
		{Name: "Anything", Description: "Turn your words into mobile apps, sites, tools, and products, built with code",
			Website: "https://www.anything.com", Category: domain.CategoryCodeGeneration, Difficulty: domain.Intermediate,
			Pricing: domain.PricingFreemium, Color: "bg-phoenix"},
		{Name: "Relume", Description: "Websites designed and built faster with AI",
			Website: "https://www.relume.io", Category: domain.CategorySiteBuilding, Difficulty: domain.Beginner,
			Pricing: domain.PricingFreemium, Color: "bg-chartreuse"},
		{Name: "Descript", Description: "AI editing for every kind of video with transcription and voice cloning",
			Website: "https://www.descript.com", Category: domain.CategoryVideoEditing, Difficulty: domain.Intermediate,
			Pricing: domain.PricingPaid, Color: "bg-cornflower"},
		{Name: "PicWish", Description: "All-in-one free AI photo editor to create professional photos effortlessly",
			Website: "https://picwish.com", Category: domain.CategoryPhotoEditing, Difficulty: domain.Beginner,
			Pricing: domain.PricingFreemium, Color: "bg-lavender"},
		{Name: "Luma AI", Description: "Production-ready images and videos with precision, speed, and control",
			Website: "https://lumalabs.ai", Category: domain.CategoryDesign, Difficulty: domain.Intermediate,
			Pricing: domain.PricingFreemium, Color: "bg-magnolia"},
	}
}

// FilterTools returns the tools matching f, preserving order
func FilterTools(tools []domain.Tool, f Filter) []domain.Tool {
	out := []domain.Tool{}
	for _, t := range tools {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Seed inserts the starter tools, skipping names already in the catalog.
// It returns how many were inserted.
func Seed(ctx context.Context, c Catalog) (int, error) {
	inserted := 0
	for _, t := range StarterTools() {
		err := c.Insert(ctx, &t)
		if errors.Is(err, ErrExists) {
			continue
		}
		if err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
