package catalog

const productFields = `
      id
      name
      brand
      inStock
      gallery
      description
      category
      prices {
        amount
        currency {
          label
          symbol
        }
      }
      attributes {
        id
        name
        type
        items {
          id
          displayValue
          value
        }
      }`

const queryAllCategories = `query GetAllCategories {
  categories {
    name
  }
}`

const queryAllProducts = `query GetAllProducts {
  products {` + productFields + `
  }
}`

const queryProductsByCategory = `query GetProductsByCategory($category: String) {
  products(category: $category) {` + productFields + `
  }
}`

const queryProductByID = `query GetProduct($id: String!) {
  product(id: $id) {` + productFields + `
  }
}`
