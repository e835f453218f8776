package profile

// builtinProfiles are the sites tuned by hand. Kept in code so the
// engine works without a profiles file.
var builtinProfiles = []SiteProfile{
	{
		Domain:      "3dcim.com",
		Primary:     []string{"#indirimliFiyat .spanFiyat", ".indirimliFiyat .spanFiyat"},
		Alternative: []string{".IndirimliFiyatContent .spanFiyat", ".spanFiyat"},
	},
	{
		Domain: "porima3d.com",
		Primary: []string{
			".price-item--sale .money",
			".price__sale .money",
			".price-item .money",
			".price .money",
			".money",
		},
		Alternative: []string{
			".price__container .money",
			"[data-price] .money",
			".price-item--regular",
			".price-item--last",
			".price-wrapper .money",
			".product-price .money",
			"span[data-product-price]",
			".price-current",
			".current-price",
		},
		DataAttributes: []string{"data-product-price", "data-price"},
	},
	{
		// data-price on this store holds an unrelated number; text only.
		Domain:      "store.metatechtr.com",
		Primary:     []string{".product-price", ".product-current-price .product-price"},
		Alternative: []string{".product-price-not-vat"},
	},
	{
		Domain:      "3dteknomarket.com",
		Primary:     []string{"#indirimliFiyat .spanFiyat", ".IndirimliFiyatContent .spanFiyat"},
		Alternative: []string{".spanFiyat"},
	},
	{
		Domain:       "robo90.com",
		Primary:      []string{".d-discountPrice .product-price", ".product-price"},
		HiddenInputs: []string{"#urun-fiyat-kdvli"},
	},
	{
		Domain:       "robolinkmarket.com",
		Primary:      []string{".d-discountPrice .product-price", ".product-price"},
		HiddenInputs: []string{"#product-price-vat-include"},
	},
	{
		Domain:       "robotistan.com",
		Primary:      []string{".product-price"},
		HiddenInputs: []string{"#product-price-vat-include"},
	},
}

// Default returns a registry holding the built-in profiles.
func Default() *Registry {
	r, err := NewRegistry(builtinProfiles...)
	if err != nil {
		panic("profile: invalid built-in profiles: " + err.Error())
	}
	return r
}
