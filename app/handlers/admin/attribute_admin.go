package admin

import (
	"net/http"
	"strconv"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/gorilla/mux"
)

func onlyActive(r *http.Request) bool {
	active, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	return active
}

func (h *AdminHandler) ListColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.attributes.ListColors(r.Context(), onlyActive(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "colors retrieved", helpers.Payload{"colors": colors})
}

func (h *AdminHandler) AddColorPost(w http.ResponseWriter, r *http.Request) {
	var in services.ColorInput
	if !h.decode(w, r, &in) {
		return
	}
	color, err := h.attributes.CreateColor(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusCreated, "color created", helpers.Payload{"color": color})
}

func (h *AdminHandler) EditColorPost(w http.ResponseWriter, r *http.Request) {
	var in services.ColorInput
	if !h.decode(w, r, &in) {
		return
	}
	color, err := h.attributes.UpdateColor(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "color updated", helpers.Payload{"color": color})
}

func (h *AdminHandler) DeleteColor(w http.ResponseWriter, r *http.Request) {
	if err := h.attributes.DeleteColor(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "color deleted", nil)
}

func (h *AdminHandler) ListSizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.attributes.ListSizes(r.Context(), onlyActive(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "sizes retrieved", helpers.Payload{"sizes": sizes})
}

func (h *AdminHandler) AddSizePost(w http.ResponseWriter, r *http.Request) {
	var in services.SizeInput
	if !h.decode(w, r, &in) {
		return
	}
	size, err := h.attributes.CreateSize(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusCreated, "size created", helpers.Payload{"size": size})
}

func (h *AdminHandler) EditSizePost(w http.ResponseWriter, r *http.Request) {
	var in services.SizeInput
	if !h.decode(w, r, &in) {
		return
	}
	size, err := h.attributes.UpdateSize(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "size updated", helpers.Payload{"size": size})
}

func (h *AdminHandler) DeleteSize(w http.ResponseWriter, r *http.Request) {
	if err := h.attributes.DeleteSize(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "size deleted", nil)
}

func (h *AdminHandler) ListVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := h.attributes.ListVariants(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "variants retrieved", helpers.Payload{"variants": variants})
}

func (h *AdminHandler) AddVariantPost(w http.ResponseWriter, r *http.Request) {
	var in services.VariantInput
	if !h.decode(w, r, &in) {
		return
	}
	variant, err := h.attributes.CreateVariant(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusCreated, "variant created", helpers.Payload{"variant": variant})
}

func (h *AdminHandler) EditVariantPost(w http.ResponseWriter, r *http.Request) {
	var in services.VariantInput
	if !h.decode(w, r, &in) {
		return
	}
	variant, err := h.attributes.UpdateVariant(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "variant updated", helpers.Payload{"variant": variant})
}

func (h *AdminHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	if err := h.attributes.DeleteVariant(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "variant deleted", nil)
}

func (h *AdminHandler) LowStockVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := h.attributes.LowStockVariants(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "low stock variants retrieved", helpers.Payload{"variants": variants})
}

func (h *AdminHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.attributes.ListImages(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "images retrieved", helpers.Payload{"images": images})
}

func (h *AdminHandler) AddImagePost(w http.ResponseWriter, r *http.Request) {
	var in services.ImageInput
	if !h.decode(w, r, &in) {
		return
	}
	image, err := h.attributes.AddImage(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusCreated, "image added", helpers.Payload{"image": image})
}

func (h *AdminHandler) SetMainImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.attributes.SetMainImage(r.Context(), vars["id"], vars["imageID"]); err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "main image updated", nil)
}

func (h *AdminHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.attributes.DeleteImage(r.Context(), vars["id"], vars["imageID"]); err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "image deleted", nil)
}
